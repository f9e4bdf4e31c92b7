package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	models "codearchive/internal/domain/models/archive"
	archiveSvc "codearchive/internal/domain/services/archive"
)

// Fixture is the YAML layout accepted by the seed command.
//
//	tenant: acme
//	documents:
//	  - title: INV-17
//	    type: invoice
//	    date: 17.03.2024
//	    codes: [AB-100, AB-200]
type Fixture struct {
	Tenant    string            `yaml:"tenant"`
	Documents []FixtureDocument `yaml:"documents"`
}

// FixtureDocument is one document of a fixture
type FixtureDocument struct {
	ID        string   `yaml:"id"`
	Type      string   `yaml:"type"`
	Title     string   `yaml:"title"`
	Date      string   `yaml:"date"`
	SourceRef string   `yaml:"source_ref"`
	Codes     []string `yaml:"codes"`
}

var seedCmd = &cobra.Command{
	Use:   "seed [fixture.yaml]",
	Short: "Load documents from a YAML fixture",
	Long: `Saves every document of the fixture in file order. Documents with an id
replace the stored document of that id; the others are created. The
fixture's tenant is used unless --tenant is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

// LoadFixture reads and decodes a fixture file
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}

	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &fixture, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	fixture, err := LoadFixture(args[0])
	if err != nil {
		return err
	}

	tenant := tenantID
	if tenant == "" {
		tenant = fixture.Tenant
	}
	if tenant == "" {
		return errors.New("fixture has no tenant and --tenant is not set")
	}

	ctx := context.Background()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	saved := make([]*models.Document, 0, len(fixture.Documents))
	for i, d := range fixture.Documents {
		req := &archiveSvc.SaveDocumentRequest{
			TenantID: tenant,
			ID:       d.ID,
			Type:     d.Type,
			Title:    d.Title,
			Date:     d.Date,
			Codes:    d.Codes,
		}
		if d.SourceRef != "" {
			ref := d.SourceRef
			req.SourceRef = &ref
		}

		doc, err := a.index.SaveDocument(ctx, req)
		if err != nil {
			return fmt.Errorf("document %d (%s): %w", i+1, d.Title, err)
		}
		saved = append(saved, doc)
	}

	if outputJSON {
		return printJSON(cmd, saved)
	}
	for _, doc := range saved {
		cmd.Printf("  %s  %s (%d codes)\n", doc.ID, doc.Title, len(doc.Codes))
	}
	cmd.Printf("Seeded %d documents for tenant %s.\n", len(fixture.Documents), tenant)
	return nil
}
