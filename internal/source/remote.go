package source

import (
	"context"
	"strings"
	"time"

	"github.com/rileyhilliard/wfmon/internal/errors"
	"github.com/rileyhilliard/wfmon/pkg/sshutil"
)

// remoteRunner is the slice of the SSH client the remote tail needs.
type remoteRunner interface {
	Exec(cmd string) (stdout, stderr []byte, exitCode int, err error)
	Close() error
}

// RemoteTailSource reads a log file on a remote host in full on every poll.
// Cluster workflow logs usually live on a login node; this source brings
// them to a local dashboard over SSH without copying files around.
type RemoteTailSource struct {
	host   string
	path   string
	runner remoteRunner
}

// NewRemoteTail dials the host (an ~/.ssh/config alias, hostname, or
// user@host) and returns a source over the remote path.
func NewRemoteTail(host, path string, timeout time.Duration) (*RemoteTailSource, error) {
	client, err := sshutil.Dial(host, timeout)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSource,
			"Can't reach host '"+host+"'",
			"Check the host is up and your SSH keys are loaded: ssh "+host)
	}
	return &RemoteTailSource{host: host, path: path, runner: client}, nil
}

// Describe returns host:path.
func (s *RemoteTailSource) Describe() string {
	return s.host + ":" + s.path
}

// Poll reads the whole remote file. A non-zero exit (file missing) is a
// retryable source-unavailable condition, same as the local tail.
func (s *RemoteTailSource) Poll(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stdout, _, exitCode, err := s.runner.Exec("cat " + shellQuote(s.path))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSource,
			"Lost connection to '"+s.host+"'",
			"The SSH connection dropped. It will be retried next tick.")
	}
	if exitCode != 0 {
		return nil, errors.New(errors.ErrSource,
			"Remote log not found: "+s.Describe(),
			"Check the path on the remote host, or wait for the engine to create it.")
	}

	return splitLines(string(stdout)), nil
}

// Close shuts down the SSH connection.
func (s *RemoteTailSource) Close() error {
	return s.runner.Close()
}

// RemoteCommandSource runs a status command on a remote host per poll.
// Used to query a cluster scheduler from a workstation.
type RemoteCommandSource struct {
	host   string
	cmd    string
	runner remoteRunner
}

// NewRemoteCommand dials the host and returns a source that runs cmd on it
// every poll.
func NewRemoteCommand(host, cmd string, timeout time.Duration) (*RemoteCommandSource, error) {
	client, err := sshutil.Dial(host, timeout)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSource,
			"Can't reach host '"+host+"'",
			"Check the host is up and your SSH keys are loaded: ssh "+host)
	}
	return &RemoteCommandSource{host: host, cmd: cmd, runner: client}, nil
}

// Describe returns host:command.
func (s *RemoteCommandSource) Describe() string {
	return s.host + ": " + s.cmd
}

// Poll runs the command remotely. Like the local command source, a
// non-zero exit is "no data yet"; only a dropped connection is a
// source-unavailable condition.
func (s *RemoteCommandSource) Poll(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stdout, _, _, err := s.runner.Exec(s.cmd)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSource,
			"Lost connection to '"+s.host+"'",
			"The SSH connection dropped. It will be retried next tick.")
	}

	return splitLines(string(stdout)), nil
}

// Close shuts down the SSH connection.
func (s *RemoteCommandSource) Close() error {
	return s.runner.Close()
}

// shellQuote single-quotes a path for the remote shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
