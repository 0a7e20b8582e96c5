package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bitfsorg/libdoge-go/wallet"
)

// secretSource says where a command reads the private key from. With no
// file set the secret is the first line of stdin.
type secretSource struct {
	secretFile   string
	walletFile   string
	passwordFile string
}

var errNoSecret = errors.New("no private key provided")

func (s *secretSource) read(stdin io.Reader) (string, error) {
	switch {
	case s.walletFile != "":
		blob, err := os.ReadFile(s.walletFile)
		if err != nil {
			return "", fmt.Errorf("read wallet file: %w", err)
		}
		password, err := readPassword(s.passwordFile)
		if err != nil {
			return "", err
		}
		return wallet.DecryptSecret(blob, password)
	case s.secretFile != "":
		data, err := os.ReadFile(s.secretFile)
		if err != nil {
			return "", fmt.Errorf("read secret file: %w", err)
		}
		return nonEmpty(string(data))
	default:
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return nonEmpty(line)
	}
}

func readPassword(path string) (string, error) {
	if path == "" {
		return "", errors.New("--password-file is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read password file: %w", err)
	}
	password := strings.TrimRight(string(data), "\r\n")
	if password == "" {
		return "", errors.New("password file is empty")
	}
	return password, nil
}

func nonEmpty(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errNoSecret
	}
	return s, nil
}

// writeEncrypted stores secret under password at path with owner-only
// permissions. An existing file is never overwritten.
func writeEncrypted(path, passwordFile, secret string) error {
	password, err := readPassword(passwordFile)
	if err != nil {
		return err
	}
	blob, err := wallet.EncryptSecret(secret, password)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("write wallet file: %w", err)
	}
	if _, err := f.Write(blob); err != nil {
		f.Close()
		return fmt.Errorf("write wallet file: %w", err)
	}
	return f.Close()
}
