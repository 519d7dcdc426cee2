package main

import (
	"context"

	"github.com/opentender/backend/config"
	"github.com/opentender/backend/internal/bootstrap"
	"github.com/spf13/cobra"
)

// --- 全局参数 ---
var (
	configPath   string
	regenerate   bool
	sectionKey   string
	noTender     bool
	noKnowledge  bool
	exportFormat string
	outputDir    string

	tenderTitle     string
	tenderReference string
	tenderClient    string
	tenderBudget    float64
	tenderDeadline  string

	assetName        string
	assetDescription string

	rootCmd = &cobra.Command{
		Use:           "tenderctl",
		Short:         "Generate and export tender response documents",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	catalogCmd = &cobra.Command{
		Use:   "catalog",
		Short: "Print the fixed section catalog",
		RunE:  runCatalog,
	}

	// --- 生成与导出 ---
	generateCmd = &cobra.Command{
		Use:   "generate [tender id]",
		Short: "Generate the sections of a tender's response document",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerate,
	}
	exportCmd = &cobra.Command{
		Use:   "export [tender id]",
		Short: "Export a tender's response document as docx, html or pdf",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	importCmd = &cobra.Command{
		Use:   "import [tender id] [markdown file...]",
		Short: "Import hand-written sections, one <section key>.md file per section",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runImport,
	}

	// --- 数据录入 ---
	tenderCmd = &cobra.Command{
		Use:   "tender",
		Short: "Manage tenders",
	}
	tenderCreateCmd = &cobra.Command{
		Use:   "create",
		Short: "Register a tender",
		RunE:  runTenderCreate,
	}
	knowledgeCmd = &cobra.Command{
		Use:   "knowledge",
		Short: "Manage the company knowledge base",
	}
	knowledgeAddCmd = &cobra.Command{
		Use:   "add [text file...]",
		Short: "Add extracted text files to the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runKnowledgeAdd,
	}
	assetCmd = &cobra.Command{
		Use:   "asset",
		Short: "Manage the image library",
	}
	assetUploadCmd = &cobra.Command{
		Use:   "upload [image file]",
		Short: "Upload an image to the object store and register it",
		Args:  cobra.ExactArgs(1),
		RunE:  runAssetUpload,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (defaults to $CONFIG_PATH or config.yaml)")

	generateCmd.Flags().BoolVar(&regenerate, "regenerate", false, "regenerate sections that already have content")
	generateCmd.Flags().StringVar(&sectionKey, "section", "", "generate a single section by key")
	generateCmd.Flags().BoolVar(&noTender, "no-tender", false, "do not include tender information in prompts")
	generateCmd.Flags().BoolVar(&noKnowledge, "no-knowledge", false, "do not include the knowledge base in prompts")

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "docx", "export format: docx, html or pdf")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", ".", "output directory")

	tenderCreateCmd.Flags().StringVar(&tenderTitle, "title", "", "tender title")
	tenderCreateCmd.Flags().StringVar(&tenderReference, "reference", "", "tender reference")
	tenderCreateCmd.Flags().StringVar(&tenderClient, "client", "", "buyer name")
	tenderCreateCmd.Flags().Float64Var(&tenderBudget, "budget", 0, "estimated budget in euros")
	tenderCreateCmd.Flags().StringVar(&tenderDeadline, "deadline", "", "submission deadline (YYYY-MM-DD)")
	_ = tenderCreateCmd.MarkFlagRequired("title")

	assetUploadCmd.Flags().StringVar(&assetName, "name", "", "display name (defaults to the file name)")
	assetUploadCmd.Flags().StringVar(&assetDescription, "description", "", "description used in prompts")

	tenderCmd.AddCommand(tenderCreateCmd)
	knowledgeCmd.AddCommand(knowledgeAddCmd)
	assetCmd.AddCommand(assetUploadCmd)
	rootCmd.AddCommand(catalogCmd, generateCmd, exportCmd, importCmd, tenderCmd, knowledgeCmd, assetCmd)
}

func loadConfig() *config.Config {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.GetConfig()
}

func newApp(ctx context.Context) (*bootstrap.App, error) {
	return bootstrap.New(ctx, loadConfig())
}
