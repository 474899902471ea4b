package domain

// WalletAddress is the resolved metadata of one wallet address. It is
// fetched fresh per operation and never cached.
type WalletAddress struct {
	// ID is the canonical wallet address URL as published by the wallet,
	// which may differ from the URL the user typed in.
	ID string
	// AuthServer is the grant endpoint of the wallet's authorization server.
	AuthServer string
	// ResourceServer is the base URL of the wallet's resource server.
	ResourceServer string
	AssetCode      string
	AssetScale     int
	PublicName     string
}
