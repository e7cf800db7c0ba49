package emailer

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	mail "github.com/xhit/go-simple-mail/v2"
)

type SmtpMail struct {
	hostname   string
	port       int
	username   string
	password   string
	authType   mail.AuthType
	encryption mail.Encryption
	noTLSCheck bool
	fromName   string
	from       string
}

func authType(authType string) mail.AuthType {
	switch strings.ToUpper(authType) {
	case "PLAIN":
		return mail.AuthPlain
	case "LOGIN":
		return mail.AuthLogin
	default:
		return mail.AuthNone
	}
}

func encryptionType(encryptionType string) mail.Encryption {
	switch strings.ToUpper(encryptionType) {
	case "NONE":
		return mail.EncryptionNone
	case "SSL", "SSLTLS":
		return mail.EncryptionSSLTLS
	default:
		return mail.EncryptionSTARTTLS
	}
}

func NewSmtpMail(hostname string, port int, username string, password string, noTLSCheck bool, auth string, fromName, from string, encryption string) *SmtpMail {
	return &SmtpMail{
		hostname:   hostname,
		port:       port,
		username:   username,
		password:   password,
		noTLSCheck: noTLSCheck,
		fromName:   fromName,
		from:       from,
		authType:   authType(auth),
		encryption: encryptionType(encryption),
	}
}

func addressField(address string, name string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}

func (o *SmtpMail) Send(toName string, to string, subject string, content string) error {
	server := mail.NewSMTPClient()
	server.Host = o.hostname
	server.Port = o.port
	server.Authentication = o.authType
	server.Username = o.username
	server.Password = o.password
	server.Encryption = o.encryption
	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second
	if o.noTLSCheck {
		server.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	smtpClient, err := server.Connect()
	if err != nil {
		return fmt.Errorf("cannot connect to smtp server %s:%d: %w", o.hostname, o.port, err)
	}

	email := mail.NewMSG()
	email.SetFrom(addressField(o.from, o.fromName)).
		AddTo(addressField(to, toName)).
		SetSubject(subject).
		SetBody(mail.TextPlain, content)
	if email.Error != nil {
		return email.Error
	}

	return email.Send(smtpClient)
}
