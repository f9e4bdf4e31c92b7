package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	models "codearchive/internal/domain/models/archive"
)

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// describeDocument renders "Title (type, date)" leaving out empty parts
func describeDocument(doc *models.Document) string {
	title := doc.Title
	if title == "" {
		title = doc.ID
	}

	var details []string
	if doc.Type != "" {
		details = append(details, doc.Type)
	}
	if doc.Date != "" {
		details = append(details, doc.Date)
	}
	if len(details) == 0 {
		return title
	}
	return fmt.Sprintf("%s (%s)", title, strings.Join(details, ", "))
}
