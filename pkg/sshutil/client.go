// Package sshutil dials SSH hosts using the user's existing SSH setup:
// ~/.ssh/config aliases, the ssh-agent, and default key files. It exists so
// monitoring a log on a cluster login node works with the same host names
// the user already types after "ssh".
package sshutil

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/kevinburke/ssh_config"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/rileyhilliard/wfmon/internal/errors"
)

// Client wraps an SSH connection with the host identity it was dialed as.
type Client struct {
	*ssh.Client
	Host    string // host/alias as given by the user
	Address string // resolved host:port
}

// StrictHostKeyChecking controls host key verification. When false, host
// keys are not checked (for automation against throwaway hosts).
var StrictHostKeyChecking = true

// Dial connects to a host given as an SSH config alias, a hostname, a
// user@host, or a host:port. Settings not present in the host string are
// resolved from ~/.ssh/config, then defaulted.
func Dial(host string, timeout time.Duration) (*Client, error) {
	settings := resolveSettings(host)

	config, err := buildClientConfig(settings)
	if err != nil {
		return nil, err
	}

	address := settings.address()
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSource,
			fmt.Sprintf("Can't reach '%s' at %s", host, address),
			suggestionForDialError(err))
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		return nil, errors.WrapWithCode(err, errors.ErrSource,
			fmt.Sprintf("SSH handshake with '%s' didn't go through", host),
			suggestionForHandshakeError(err, settings.encryptedKeys))
	}

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Host:    host,
		Address: address,
	}, nil
}

// Close shuts down the connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// settings holds resolved connection parameters.
type settings struct {
	hostname      string
	port          string
	user          string
	identityFile  string
	encryptedKeys []string // keys that exist but need a passphrase
}

func (s *settings) address() string {
	return net.JoinHostPort(s.hostname, s.port)
}

// resolveSettings parses user@host:port and fills the gaps from ~/.ssh/config.
func resolveSettings(host string) *settings {
	s := &settings{
		port: "22",
		user: currentUser(),
	}

	if atIdx := strings.Index(host, "@"); atIdx != -1 {
		s.user = host[:atIdx]
		host = host[atIdx+1:]
	}

	if colonIdx := strings.LastIndex(host, ":"); colonIdx != -1 {
		port := host[colonIdx+1:]
		if port != "" && strings.Trim(port, "0123456789") == "" {
			s.port = port
			host = host[:colonIdx]
		}
	}

	s.hostname = host

	cfg, err := loadSSHConfig(filepath.Join(homeDir(), ".ssh", "config"))
	if err != nil {
		return s
	}

	if hostname, _ := cfg.Get(host, "HostName"); hostname != "" {
		s.hostname = hostname
	}
	if port, _ := cfg.Get(host, "Port"); port != "" {
		s.port = port
	}
	if user, _ := cfg.Get(host, "User"); user != "" {
		s.user = user
	}
	if identity, _ := cfg.Get(host, "IdentityFile"); identity != "" {
		s.identityFile = expandPath(identity)
	}

	return s
}

// loadSSHConfig reads and decodes an SSH config file. Content from the
// first Match directive onward is dropped before decoding, since the
// decoder doesn't understand Match blocks.
func loadSSHConfig(path string) (*ssh_config.Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ssh_config.Decode(bytes.NewReader(stripMatchBlocks(content)))
}

func stripMatchBlocks(content []byte) []byte {
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "match ") {
			return []byte(strings.Join(lines[:i], "\n"))
		}
	}
	return content
}

// buildClientConfig assembles auth methods: agent first, then the host's
// identity file, then default key files.
func buildClientConfig(s *settings) (*ssh.ClientConfig, error) {
	var authMethods []ssh.AuthMethod

	tryKeyFile := func(keyPath string) {
		auth, err := keyFileAuth(keyPath)
		if err != nil {
			var encErr *EncryptedKeyError
			if stderrors.As(err, &encErr) {
				s.encryptedKeys = append(s.encryptedKeys, keyPath)
			}
			return
		}
		authMethods = append(authMethods, auth)
	}

	if agentAuth := sshAgentAuth(); agentAuth != nil {
		authMethods = append(authMethods, agentAuth)
	}

	if s.identityFile != "" {
		tryKeyFile(s.identityFile)
	}

	for _, keyPath := range defaultKeyPaths() {
		if keyPath != s.identityFile {
			tryKeyFile(keyPath)
		}
	}

	if len(authMethods) == 0 {
		msg := "No SSH auth methods available"
		suggestion := "Check your keys are loaded: ssh-add -l"
		if len(s.encryptedKeys) > 0 {
			msg = "Found SSH key(s) but they're encrypted: " + strings.Join(s.encryptedKeys, ", ")
			suggestion = "Add them to the agent: ssh-add " + s.encryptedKeys[0]
		}
		return nil, errors.New(errors.ErrSource, msg, suggestion)
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey() //nolint:gosec // explicit opt-out
	if StrictHostKeyChecking {
		cb, err := knownHostsCallback(filepath.Join(homeDir(), ".ssh", "known_hosts"))
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrSource,
				"Can't load ~/.ssh/known_hosts", "Check the file isn't corrupted.")
		}
		hostKeyCallback = cb
	}

	return &ssh.ClientConfig{
		User:            s.user,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         10 * time.Second,
	}, nil
}

// agentConn is reused across dials.
var (
	agentClient   agent.ExtendedAgent
	agentConnOnce sync.Once
)

// sshAgentAuth returns agent-backed auth, or nil when no agent is running
// or the agent holds no keys. An empty agent placed first in the auth list
// just burns an auth attempt.
func sshAgentAuth() ssh.AuthMethod {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}

	agentConnOnce.Do(func() {
		conn, err := net.Dial("unix", socket)
		if err != nil {
			return
		}
		agentClient = agent.NewClient(conn)
	})

	if agentClient == nil {
		return nil
	}
	signers, err := agentClient.Signers()
	if err != nil || len(signers) == 0 {
		return nil
	}
	return ssh.PublicKeysCallback(agentClient.Signers)
}

// keyFileAuth loads a private key file. Returns EncryptedKeyError when the
// key needs a passphrase.
func keyFileAuth(keyPath string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		if strings.Contains(err.Error(), "encrypted") ||
			strings.Contains(err.Error(), "passphrase") ||
			bytes.Contains(key, []byte("ENCRYPTED")) {
			return nil, &EncryptedKeyError{Path: keyPath}
		}
		return nil, err
	}

	return ssh.PublicKeys(signer), nil
}

// EncryptedKeyError is returned when an SSH key requires a passphrase.
type EncryptedKeyError struct {
	Path string
}

func (e *EncryptedKeyError) Error() string {
	return fmt.Sprintf("SSH key at %s is encrypted (passphrase protected)", e.Path)
}

// knownHostsCallback verifies host keys against known_hosts, creating the
// file on first use.
func knownHostsCallback(path string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte{}, 0o600); err != nil {
			return nil, err
		}
	}
	return knownhosts.New(path)
}

func defaultKeyPaths() []string {
	return []string{
		filepath.Join(homeDir(), ".ssh", "id_ed25519"),
		filepath.Join(homeDir(), ".ssh", "id_rsa"),
		filepath.Join(homeDir(), ".ssh", "id_ecdsa"),
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func suggestionForDialError(err error) string {
	errStr := err.Error()
	switch {
	case strings.Contains(errStr, "connection refused"):
		return "Is SSH running on that box? Try: ssh <host>"
	case strings.Contains(errStr, "no route to host"), strings.Contains(errStr, "network is unreachable"):
		return "Can't route to the host. Check your network connection."
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "i/o timeout"):
		return "Connection timed out. Host might be offline or blocked by a firewall."
	}
	return "Make sure the host is reachable: ping <host>"
}

func suggestionForHandshakeError(err error, encryptedKeys []string) string {
	errStr := err.Error()
	if strings.Contains(errStr, "unable to authenticate") || strings.Contains(errStr, "no supported methods") {
		if len(encryptedKeys) > 0 {
			return "Your key(s) are encrypted. Add them to the agent: ssh-add " + encryptedKeys[0]
		}
		return "Auth failed. Check your keys are loaded: ssh-add -l"
	}
	if strings.Contains(errStr, "host key") {
		return "Host key issue. Try connecting manually first: ssh <host>"
	}
	return "Something went wrong during SSH setup. Try: ssh <host>"
}
