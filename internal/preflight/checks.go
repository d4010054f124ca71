package preflight

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"time"
)

// NodeChecks is the canonical ordered list of node-mode preflight checks.
func NodeChecks() []Check {
	return []Check{
		&dirWritable{id: "dirs:textfile", path: func(d *Deps) string { return d.TextfileDir }},
		&dirWritable{id: "dirs:scripts", path: func(d *Deps) string { return d.ScriptDir }},
		&commandPresent{id: "software:sh", command: "sh", required: true},
		&commandPresent{id: "software:systemctl", command: "systemctl", required: false},
		&portFree{id: "ports:node-exporter", port: 9100},
		&portFree{id: "ports:gpu-exporter", port: 9400},
		&hostnameResolves{id: "network:hostname"},
		&serverReachable{id: "network:config-server"},
	}
}

// dirWritable verifies a directory exists (or can be created) and accepts
// writes.
type dirWritable struct {
	id   string
	path func(*Deps) string
}

func (c *dirWritable) ID() string { return c.id }

func (c *dirWritable) Run(ctx context.Context, deps *Deps) Result {
	dir := c.path(deps)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{Check: c.id, Status: StatusFail, Message: fmt.Sprintf("cannot create %s: %v", dir, err)}
	}
	probe, err := os.CreateTemp(dir, ".preflight")
	if err != nil {
		return Result{Check: c.id, Status: StatusFail, Message: fmt.Sprintf("%s is not writable: %v", dir, err)}
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())
	return Result{Check: c.id, Status: StatusPass, Message: dir + " is writable"}
}

// commandPresent verifies a command is available on PATH.
type commandPresent struct {
	id       string
	command  string
	required bool
}

func (c *commandPresent) ID() string { return c.id }

func (c *commandPresent) Run(ctx context.Context, deps *Deps) Result {
	if _, err := exec.LookPath(c.command); err != nil {
		status := StatusWarn
		if c.required {
			status = StatusFail
		}
		return Result{Check: c.id, Status: status, Message: c.command + " not found on PATH"}
	}
	return Result{Check: c.id, Status: StatusPass, Message: c.command + " found"}
}

// portFree verifies an exporter port is not already bound. A bound port is a
// warning: the exporter may legitimately already be running.
type portFree struct {
	id   string
	port int
}

func (c *portFree) ID() string { return c.id }

func (c *portFree) Run(ctx context.Context, deps *Deps) Result {
	addr := fmt.Sprintf(":%d", c.port)
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return Result{Check: c.id, Status: StatusWarn, Message: fmt.Sprintf("port %d is already in use", c.port)}
	}
	_ = l.Close()
	return Result{Check: c.id, Status: StatusPass, Message: fmt.Sprintf("port %d is available", c.port)}
}

// hostnameResolves verifies the configured hostname resolves locally, since
// the config-server keys check assignment by hostname.
type hostnameResolves struct {
	id string
}

func (c *hostnameResolves) ID() string { return c.id }

func (c *hostnameResolves) Run(ctx context.Context, deps *Deps) Result {
	if deps.Hostname == "" {
		return Result{Check: c.id, Status: StatusFail, Message: "hostname is empty"}
	}
	if _, err := net.DefaultResolver.LookupHost(ctx, deps.Hostname); err != nil {
		return Result{Check: c.id, Status: StatusWarn, Message: fmt.Sprintf("hostname %q does not resolve: %v", deps.Hostname, err)}
	}
	return Result{Check: c.id, Status: StatusPass, Message: deps.Hostname + " resolves"}
}

// serverReachable probes the config-server health endpoint.
type serverReachable struct {
	id string
}

func (c *serverReachable) ID() string { return c.id }

func (c *serverReachable) Run(ctx context.Context, deps *Deps) Result {
	if deps.Pinger == nil {
		return Result{Check: c.id, Status: StatusFail, Message: "config-server URL is not configured"}
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := deps.Pinger.Ping(pctx); err != nil {
		return Result{Check: c.id, Status: StatusFail, Message: err.Error()}
	}
	return Result{Check: c.id, Status: StatusPass, Message: "config-server is reachable"}
}
