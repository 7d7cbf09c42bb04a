package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	serverrun "github.com/max-niederman/beryl/internal/cmd/server"
	cfgpkg "github.com/max-niederman/beryl/internal/config"
	"github.com/max-niederman/beryl/internal/runtime"
	"github.com/max-niederman/beryl/pkg/crystal"
)

func main() {
	cfgpkg.LoadDotEnv()

	rootCmd := &cobra.Command{
		Use:   "beryl",
		Short: "Beryl Crystal identifier CLI",
		Long:  "Beryl mints compact, sortable 64-bit identifiers (Crystals). This CLI manages the minting server, local generation, and the producer registry.",
	}
	rootCmd.PersistentFlags().String("config", "", "Path to JSON config file")

	rootCmd.AddCommand(serverCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(producerCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadConfig builds the effective config: defaults, optional file, env overlay.
func loadConfig(cmd *cobra.Command) (cfgpkg.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := cfgpkg.Load(path)
	if err != nil {
		return cfgpkg.Config{}, err
	}
	cfgpkg.FromEnv(&cfg)
	return cfg, nil
}

func serverCmd() *cobra.Command {
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	startCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the beryl minting server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if v, _ := cmd.Flags().GetString("epoch"); v != "" {
				cfg.Epoch = v
			}
			if v, _ := cmd.Flags().GetString("block"); v != "" {
				cfg.BlockStrategy = v
			}
			if v, _ := cmd.Flags().GetString("log-level"); v != "" {
				cfg.LogLevel = v
			}
			if v, _ := cmd.Flags().GetString("log-format"); v != "" {
				cfg.LogFormat = v
			}
			dataDir, _ := cmd.Flags().GetString("data-dir")
			httpAddr, _ := cmd.Flags().GetString("http")
			if err := serverrun.Run(cmd.Context(), serverrun.Options{
				DataDir:  dataDir,
				HTTPAddr: httpAddr,
				Config:   cfg,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	startCmd.Flags().String("data-dir", "", "Data directory (default: OS-specific application data directory)")
	startCmd.Flags().String("http", "", "HTTP listen address (default :8080)")
	startCmd.Flags().String("epoch", os.Getenv("BERYL_EPOCH"), "Crystal epoch as RFC3339 (default 2020-01-01T00:00:00Z)")
	startCmd.Flags().String("block", os.Getenv("BERYL_BLOCK_STRATEGY"), "Blocking strategy: spin|sleep")
	startCmd.Flags().String("log-level", os.Getenv("BERYL_LOG_LEVEL"), "Log level: debug|info|warn|error")
	startCmd.Flags().String("log-format", os.Getenv("BERYL_LOG_FORMAT"), "Log format: text|json")
	serverCmd.AddCommand(startCmd)
	return serverCmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Crystals locally without a server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if v, _ := cmd.Flags().GetString("epoch"); v != "" {
				cfg.Epoch = v
			}
			if v, _ := cmd.Flags().GetString("block"); v != "" {
				cfg.BlockStrategy = v
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			epoch, err := cfg.EpochTime()
			if err != nil {
				return err
			}

			producer, _ := cmd.Flags().GetUint16("producer")
			count, _ := cmd.Flags().GetInt("count")
			hex, _ := cmd.Flags().GetBool("hex")

			block := crystal.BlockSpin
			if cfg.BlockStrategy == "sleep" {
				block = crystal.BlockSleep
			}
			g, err := crystal.NewGenerator(producer, epoch, crystal.WithBlockStrategy(block))
			if err != nil {
				return err
			}
			for i := 0; i < count; i++ {
				c := g.Generate()
				if hex {
					fmt.Println(c.String())
				} else {
					fmt.Println(c.Int64())
				}
			}
			return nil
		},
	}
	cmd.Flags().Uint16("producer", 0, "Producer id (0..16383)")
	cmd.Flags().Int("count", 1, "Number of Crystals to generate")
	cmd.Flags().Bool("hex", false, "Print the hex form instead of signed decimal")
	cmd.Flags().String("epoch", os.Getenv("BERYL_EPOCH"), "Crystal epoch as RFC3339")
	cmd.Flags().String("block", os.Getenv("BERYL_BLOCK_STRATEGY"), "Blocking strategy: spin|sleep")
	return cmd
}

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <id>",
		Short: "Decompose a Crystal into its fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			epoch, err := cfg.EpochTime()
			if err != nil {
				return err
			}

			raw := args[0]
			var c crystal.Crystal
			if v, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
				c = crystal.FromInt64(v)
			} else if c, err = crystal.ParseString(raw); err != nil {
				return fmt.Errorf("invalid crystal id %q", raw)
			}

			p := c.Parts()
			fmt.Printf("id:        %d\n", c.Int64())
			fmt.Printf("hex:       %s\n", c.String())
			fmt.Printf("producer:  %d\n", p.Producer)
			fmt.Printf("sequence:  %d\n", p.Sequence)
			fmt.Printf("timestamp: %d ms\n", p.Timestamp)
			fmt.Printf("time:      %s\n", c.Time(epoch).UTC().Format(time.RFC3339Nano))
			return nil
		},
	}
	return cmd
}

func producerCmd() *cobra.Command {
	producerCmd := &cobra.Command{Use: "producer", Short: "Producer registry operations (local store)"}

	openRT := func(cmd *cobra.Command) (*runtime.Runtime, error) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		dataDir, _ := cmd.Flags().GetString("data-dir")
		if dataDir == "" {
			dataDir = cfg.DataDir
		}
		if dataDir == "" {
			dataDir = cfgpkg.DefaultDataDir()
		}
		return runtime.Open(runtime.Options{DataDir: filepath.Join(dataDir, "store"), Config: cfg})
	}

	allocateCmd := &cobra.Command{
		Use:   "allocate",
		Short: "Allocate (or look up) a producer id for a name",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRT(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			name, _ := cmd.Flags().GetString("name")
			rec, err := rt.Registry().Allocate(name)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%d\n", rec.Name, rec.ProducerID)
			return nil
		},
	}
	allocateCmd.Flags().String("name", "", "Producer name")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered producers",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRT(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			records, err := rt.Registry().List()
			if err != nil {
				return err
			}
			for _, rec := range records {
				fmt.Printf("%d\t%s\n", rec.ProducerID, rec.Name)
			}
			return nil
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the producer registry as gzip JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRT(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			out, _ := cmd.Flags().GetString("out")
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			return rt.Registry().Export(f)
		},
	}
	exportCmd.Flags().String("out", "producers.json.gz", "Output file")

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import a producer registry export",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRT(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			in, _ := cmd.Flags().GetString("in")
			f, err := os.Open(in)
			if err != nil {
				return err
			}
			defer f.Close()
			n, err := rt.Registry().Import(f)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d producers\n", n)
			return nil
		},
	}
	importCmd.Flags().String("in", "producers.json.gz", "Input file")

	for _, c := range []*cobra.Command{allocateCmd, listCmd, exportCmd, importCmd} {
		c.Flags().String("data-dir", "", "Data directory (default: OS-specific application data directory)")
		producerCmd.AddCommand(c)
	}
	return producerCmd
}
