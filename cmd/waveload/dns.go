package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nao1215/waveload/internal/config"
	"github.com/nao1215/waveload/internal/dns"
	"github.com/nao1215/waveload/internal/log"
	"github.com/spf13/cobra"
)

// newRoute53API builds the Route 53 client. Tests replace it with a fake.
var newRoute53API = func(ctx context.Context, profile, region string) (dns.API, error) {
	return dns.NewClient(ctx, profile, region)
}

// NewDNSCmd creates the dns command group.
func NewDNSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dns",
		Short: "Manage the DNS record that points at the load target",
	}
	cmd.AddCommand(newDNSUpsertCmd())
	return cmd
}

func newDNSUpsertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upsert",
		Short: "Create or replace a Route 53 CNAME record",
		Long: `Upsert submits a single UPSERT change for a CNAME record to Route 53.

Flags override the "dns" section of the configuration file. Credentials come
from the named shared-config profile for this call only; the default profile
is left untouched.

Examples:
  waveload dns upsert --name app.example.com \
    --value my-lb-123.ap-southeast-1.elb.amazonaws.com \
    --zone Z0123456789 --aws-profile loadtest

  # Wait until the change is INSYNC
  waveload dns upsert --wait 2m`,
		Args: cobra.NoArgs,
		RunE: runDNSUpsertCmd,
	}

	cmd.Flags().String("name", "", "Record name (e.g. app.example.com)")
	cmd.Flags().String("value", "", "CNAME target")
	cmd.Flags().Int64("ttl", dns.DefaultTTL, "Record TTL in seconds")
	cmd.Flags().String("zone", "", "Route 53 hosted zone ID")
	cmd.Flags().String("comment", "", "Change batch comment")
	cmd.Flags().String("aws-profile", "", "AWS shared-config profile")
	cmd.Flags().String("region", "", "AWS region")
	cmd.Flags().Duration("wait", 0, "Wait up to this long for the change to become INSYNC")
	cmd.Flags().Bool("json", false, "Print the change as JSON")
	cmd.Flags().StringP("config", "c", "", "Configuration file path")

	return cmd
}

// dnsOptions is the merged input of dns upsert.
type dnsOptions struct {
	record     dns.Record
	awsProfile string
	region     string
	wait       time.Duration
	json       bool
}

func runDNSUpsertCmd(cmd *cobra.Command, _ []string) error {
	opts, err := buildDNSOptions(cmd)
	if err != nil {
		return err
	}
	if err := opts.record.Validate(); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}

	logger := log.New(os.Stderr, log.Options{Verbose: getVerboseFlag(cmd)})
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	api, err := newRoute53API(ctx, opts.awsProfile, opts.region)
	if err != nil {
		return err
	}

	upserter := dns.NewUpserter(api, logger)
	change, err := upserter.Upsert(ctx, opts.record)
	if err != nil {
		return err
	}
	if opts.wait > 0 && !change.Insync() {
		if change, err = upserter.Wait(ctx, change, opts.wait); err != nil {
			return err
		}
	}

	return printChange(cmd.OutOrStdout(), opts.record, change, opts.json)
}

// buildDNSOptions merges the config file's dns section with explicit flags.
func buildDNSOptions(cmd *cobra.Command) (*dnsOptions, error) {
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	file, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration file: %w", err)
	}

	d := file.DNS
	opts := &dnsOptions{
		record: dns.Record{
			Name:         d.Name,
			Value:        d.Value,
			TTL:          d.TTL,
			HostedZoneID: d.HostedZoneID,
			Comment:      d.Comment,
		},
		awsProfile: d.AWSProfile,
		region:     d.Region,
	}

	strFlags := map[string]*string{
		"name":        &opts.record.Name,
		"value":       &opts.record.Value,
		"zone":        &opts.record.HostedZoneID,
		"comment":     &opts.record.Comment,
		"aws-profile": &opts.awsProfile,
		"region":      &opts.region,
	}
	for name, dst := range strFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	if flags.Changed("ttl") || opts.record.TTL == 0 {
		if opts.record.TTL, err = flags.GetInt64("ttl"); err != nil {
			return nil, err
		}
	}
	if opts.wait, err = flags.GetDuration("wait"); err != nil {
		return nil, err
	}
	if opts.json, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	return opts, nil
}

func printChange(w io.Writer, rec dns.Record, change *dns.Change, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Record dns.Record  `json:"record"`
			Change *dns.Change `json:"change"`
		}{rec, change})
	}

	_, err := fmt.Fprintf(w, "%s CNAME %s (ttl %d)\nchange %s %s\n",
		rec.Name, rec.Value, rec.TTL, change.ID, change.Status)
	return err
}
