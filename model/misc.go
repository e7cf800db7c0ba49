package model

// BaseData struct to pass value to the base template
type BaseData struct {
	Active      string
	CurrentUser string
}

// ViteAssets holds the script and stylesheet urls injected into the index page
type ViteAssets struct {
	DevMode bool
	Scripts []string
	Styles  []string
}
