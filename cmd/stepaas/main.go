package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"stepaas/internal/aas"
	"stepaas/internal/assembly"
	"stepaas/internal/config"
	"stepaas/internal/crawler"
	"stepaas/internal/geometry"
	"stepaas/internal/logging"
	"stepaas/internal/pipeline"
	"stepaas/internal/semantic"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rootCmd = &cobra.Command{
		Use:   "stepaas",
		Short: "Convert STEP exchange documents into an assembly shell package",
	}
	configPath   string
	mainFile     string
	outputPath   string
	withFallback bool
	withGeometry bool
	dictPath     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")

	convertCmd.Flags().StringVarP(&mainFile, "main", "m", "", "Main assembly document, relative to the input directory (required)")
	convertCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output package path (default from config)")
	convertCmd.Flags().BoolVar(&withFallback, "fallback", false, "Enable statement-containment fallback for unlinked annotations")
	convertCmd.Flags().BoolVar(&withGeometry, "geometry", false, "Read geometry sidecar files for the root assembly")
	convertCmd.Flags().StringVar(&dictPath, "dict", "", "Concept dictionary CSV for semantic identifiers")

	inspectCmd.Flags().StringVarP(&mainFile, "main", "m", "", "Main assembly document, relative to the input directory (required)")
	inspectCmd.Flags().BoolVar(&withFallback, "fallback", false, "Enable statement-containment fallback for unlinked annotations")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(scanCmd)
}

func setup() (*config.Config, *zap.Logger) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		logger = logging.NewDefault()
		logger.Warn("invalid logging config, using defaults", zap.Error(err))
	}
	return cfg, logger
}

func runPipeline(cfg *config.Config, logger *zap.Logger, inputDir string, extractGeometry bool) (*pipeline.Converter, *pipeline.Result) {
	if mainFile == "" {
		log.Fatalf("The main assembly document must be named with -m")
	}

	var measurer geometry.Measurer
	if extractGeometry {
		measurer = geometry.NewSidecar()
	}

	conv := pipeline.New(pipeline.Options{
		InputDir:            inputDir,
		Primary:             mainFile,
		EnableFallback:      withFallback || cfg.Resolve.EnableFallback,
		ExtractRootGeometry: extractGeometry,
	}, measurer, logger)

	result, err := conv.Run(context.Background())
	if err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}
	report := result.Report
	fmt.Printf("✅ Processed %d documents: %d components, %d edges, %d annotations.\n",
		report.DocumentsFound, report.Components, report.Edges, report.Annotations)
	if len(report.UnmatchedDocs) > 0 {
		fmt.Printf("⚠️  %d annotation documents matched no component:\n", len(report.UnmatchedDocs))
		for _, doc := range report.UnmatchedDocs {
			fmt.Printf("   - %s\n", filepath.Base(doc))
		}
	}
	return conv, result
}

var convertCmd = &cobra.Command{
	Use:   "convert [path]",
	Short: "Convert a directory of exchange documents into a shell package",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inputDir := "."
		if len(args) > 0 {
			inputDir = args[0]
		}

		cfg, logger := setup()
		defer logger.Sync()

		dictionary := cfg.Taxonomy.Dictionary
		if dictPath != "" {
			dictionary = dictPath
		}
		var dict *semantic.Dictionary
		if dictionary != "" {
			var err error
			dict, err = semantic.Load(dictionary)
			if err != nil {
				log.Fatalf("Failed to load concept dictionary: %v", err)
			}
			fmt.Printf("📖 Loaded concept dictionary: %s\n", dictionary)
		}

		fmt.Printf("📂 Converting directory: %s\n", inputDir)
		conv, result := runPipeline(cfg, logger, inputDir, withGeometry || cfg.Geometry.ExtractRoot)

		builder := aas.NewBuilder(conv.Allocator(), dict)
		env := builder.BuildEnvironment(result.Tree, result.Header, result.Primary, cfg.Model.Name)

		out := cfg.Output.Path
		if outputPath != "" {
			out = outputPath
		}
		if err := aas.WritePackage(out, env, builder.Files()); err != nil {
			log.Fatalf("Failed to write package: %v", err)
		}
		fmt.Printf("🎉 Package written: %s\n", out)
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [path]",
	Short: "Print the resolved assembly hierarchy without writing a package",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inputDir := "."
		if len(args) > 0 {
			inputDir = args[0]
		}

		cfg, logger := setup()
		defer logger.Sync()

		_, result := runPipeline(cfg, logger, inputDir, false)

		fmt.Println()
		result.Tree.Root.Walk(func(c *assembly.Component, depth int) {
			indent := strings.Repeat("  ", depth)
			fmt.Printf("%s- %s [%s] (%s)\n", indent, c.Name, c.Kind, c.SyntheticID)
			for _, ann := range c.Annotations {
				fmt.Printf("%s    %s: %s\n", indent, ann.Name, ann.Description)
			}
		})
		if result.Tree.Virtual {
			fmt.Println("\n⚠️  No unique root was found; components hang under a synthetic root.")
		}
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "List the exchange documents a conversion would process",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inputDir := "."
		if len(args) > 0 {
			inputDir = args[0]
		}

		docs, err := crawler.FindDocuments(inputDir)
		if err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		if len(docs) == 0 {
			fmt.Println("No exchange documents found.")
			return
		}
		for _, doc := range docs {
			fmt.Println(doc)
		}
		fmt.Printf("📄 %d documents.\n", len(docs))
	},
}
