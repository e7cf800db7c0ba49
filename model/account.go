package model

// Account model. There is at most one account per installation.
type Account struct {
	Username     string `ini:"username"`
	PasswordHash string `ini:"password_hash"`
}

// AppConfig is the content of the configuration file
type AppConfig struct {
	SecretKey string
	Account   Account
}

// HasAccount reports whether the setup step has been completed
func (c AppConfig) HasAccount() bool {
	return c.Account.Username != ""
}
