package storefront

// Version is set at build time with -ldflags "-X github.com/cthstore/storefront.Version=...".
var Version = "dev"
