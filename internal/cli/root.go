// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package cli implements nutrictl, the administrative command line of the
// remote snapshot store.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/nutrilife-sync/internal/adapter"
	"github.com/MKhiriev/nutrilife-sync/internal/clock"
	"github.com/MKhiriev/nutrilife-sync/internal/config"
	"github.com/MKhiriev/nutrilife-sync/internal/logger"
	"github.com/MKhiriev/nutrilife-sync/models"
)

const defaultOperator = "nutrictl"

var errSnapshotNotFound = errors.New("no snapshot stored for user")

// Options carry the collaborators of the command tree. Nil fields select
// the production implementations.
type Options struct {
	BuildInfo models.AppBuildInfo
	Logger    *logger.Logger
	Clock     clock.Clock

	// LoadConfig reads the configuration file at path; path may be empty.
	LoadConfig func(path string) (*config.StructuredConfig, error)

	// Connect returns the remote store authenticated as operator with
	// administrative rights.
	Connect func(cfg *config.StructuredConfig, operator string, log *logger.Logger) (adapter.ServerAdapter, error)

	// Confirm asks a yes/no question.
	Confirm func(title, description string) (bool, error)
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.LoadConfig == nil {
		o.LoadConfig = config.LoadConfig
	}
	if o.Connect == nil {
		o.Connect = connectRemote
	}
	if o.Confirm == nil {
		o.Confirm = confirmPrompt
	}
	return o
}

type cli struct {
	opts       Options
	configPath string
	operator   string

	cfg    *config.StructuredConfig
	remote adapter.ServerAdapter
}

// NewRootCmd builds the nutrictl command tree.
func NewRootCmd(opts Options) *cobra.Command {
	c := &cli{opts: opts.withDefaults()}

	root := &cobra.Command{
		Use:   "nutrictl",
		Short: "Administer NutriLife snapshots",
		Long: `nutrictl lists, exports and removes the snapshots kept by the
NutriLife sync server, and previews how compaction shrinks an export.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file path")
	root.PersistentFlags().StringVar(&c.operator, "operator", defaultOperator, "subject of the admin token")

	root.AddCommand(
		c.newListCmd(),
		c.newRemoveAccountCmd(),
		c.newExportCmd(),
		c.newCompactCmd(),
		c.newVersionCmd(),
	)

	return root
}

func (c *cli) loadConfig() (*config.StructuredConfig, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}

	cfg, err := c.opts.LoadConfig(c.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = cfg
	return cfg, nil
}

func (c *cli) connect() (adapter.ServerAdapter, error) {
	if c.remote != nil {
		return c.remote, nil
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	remote, err := c.opts.Connect(cfg, c.operator, c.opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("connect to server: %w", err)
	}
	c.remote = remote
	return remote, nil
}

func (c *cli) close() error {
	if closer, ok := c.remote.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func connectRemote(cfg *config.StructuredConfig, operator string, log *logger.Logger) (adapter.ServerAdapter, error) {
	clientCfg := config.NewClientConfig(cfg)
	return adapter.NewServerAdapter(*clientCfg, adapter.AdminCredentials(clientCfg.App, operator), log)
}

func confirmPrompt(title, description string) (bool, error) {
	var confirmed bool

	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Remove").
		Negative("Cancel").
		Value(&confirmed).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return confirmed, err
}
