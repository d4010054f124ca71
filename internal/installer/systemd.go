package installer

import (
	"context"
	"fmt"
	"os"
)

const unitPath = "/etc/systemd/system/all-smi.service"

const unitTemplate = `[Unit]
Description=all-smi Multi-Vendor AI Accelerator Metrics Exporter
Documentation=https://github.com/lablup/all-smi
Wants=network-online.target
After=network-online.target

[Service]
User=%[1]s
Group=%[1]s
Type=simple
ExecStart=%[2]s serve --port %[3]d
Restart=on-failure
RestartSec=5s

NoNewPrivileges=true
ProtectHome=true
PrivateTmp=true

SupplementaryGroups=video render

[Install]
WantedBy=multi-user.target
`

// UnitFile renders the systemd unit for the given binary path and config.
func UnitFile(cfg Config, binaryPath string) string {
	return fmt.Sprintf(unitTemplate, cfg.ServiceUser, binaryPath, cfg.Port)
}

func (i *Installer) writeUnit(ctx context.Context) error {
	return os.WriteFile(i.unitPath, []byte(UnitFile(i.cfg, i.binaryPath)), 0o644)
}
