package store

import (
	"fmt"
	"log"
	"os"
	"strings"
)

// IngestDocumentsFromFile reads a two-column Markdown table (| source | text |)
// and replaces the documents table with its rows. Returns the ingested count.
func (s *SQLiteStore) IngestDocumentsFromFile(filePath string) (int, error) {
	contentBytes, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to read data file %s: %w", filePath, err)
	}
	lines := strings.Split(string(contentBytes), "\n")

	type rawDoc struct {
		source  string
		content string
	}
	var rawDocs []rawDoc
	for i, line := range lines {
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine == "" {
			continue
		}

		// Skip table header and separator
		if i == 0 && strings.Contains(trimmedLine, "|") {
			continue
		}
		if i == 1 && strings.Contains(trimmedLine, "|") && strings.Contains(trimmedLine, "---") {
			continue
		}

		if !strings.HasPrefix(trimmedLine, "|") || !strings.HasSuffix(trimmedLine, "|") {
			if i > 1 {
				log.Printf("Skipping line not matching table row format: %s", trimmedLine)
			}
			continue
		}

		parts := strings.Split(trimmedLine, "|")
		// "| source | text |" splits into ["", " source ", " text ", ""]
		if len(parts) < 4 {
			log.Printf("Skipping malformed table row (need source and text cells): %s", trimmedLine)
			continue
		}
		source := strings.TrimSpace(parts[1])
		content := strings.TrimSpace(strings.Join(parts[2:len(parts)-1], "|"))
		if content == "" {
			log.Printf("Skipping row with empty content cell: %s", trimmedLine)
			continue
		}
		if source == "" {
			source = "handbook"
		}
		rawDocs = append(rawDocs, rawDoc{source: source, content: content})
	}

	if len(rawDocs) == 0 {
		log.Println("No documents parsed from data file. Ensure it's a Markdown table with source and text columns.")
		return 0, nil
	}

	if err := s.ClearDocuments(); err != nil {
		return 0, fmt.Errorf("failed to clear existing documents: %w", err)
	}

	count := 0
	for i, raw := range rawDocs {
		doc := Document{Source: raw.source, Content: raw.content}
		if err := s.createDocument(&doc); err != nil {
			log.Printf("Failed to store document %d: %v. Skipping.", i+1, err)
			continue
		}
		count++
	}
	log.Printf("Successfully ingested %d documents.", count)
	return count, nil
}
