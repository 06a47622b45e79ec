package gen

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"shape-mapper/internal/plan"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// File is a rendered plan description.
type File struct {
	// Filename is the name of the file (e.g., "store_order_to_warehouse_order.yaml").
	Filename string
	// Content is the file body.
	Content []byte
}

// PlanFiles renders one YAML description per plan.
func PlanFiles(plans ...*plan.MappingPlan) ([]File, error) {
	files := make([]File, 0, len(plans))

	for _, p := range plans {
		content, err := plan.ExportYAML(p)
		if err != nil {
			return nil, fmt.Errorf("exporting %s: %w", p.Signature, err)
		}

		files = append(files, File{Filename: filename(p), Content: content})
	}

	return files, nil
}

// filename names the description of p after its pair and intent.
func filename(p *plan.MappingPlan) string {
	sig := p.Signature

	return fmt.Sprintf("%s_to_%s_%s.yaml", typeSlug(sig.Source), typeSlug(sig.Target), sig.Intent)
}

func typeSlug(t reflect.Type) string {
	name := t.Name()
	if name == "" {
		name = t.Kind().String()
	}

	if pkg := filepath.Base(t.PkgPath()); t.PkgPath() != "" {
		name = pkg + "_" + name
	}

	return strings.ToLower(name)
}

// WriteFiles writes all files to the output directory.
// It creates the directory if it doesn't exist.
func WriteFiles(files []File, outputDir string) error {
	// Create output directory if it doesn't exist
	err := os.MkdirAll(outputDir, dirPerm)
	if err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for _, file := range files {
		outputPath := filepath.Join(outputDir, file.Filename)

		err := os.WriteFile(outputPath, file.Content, filePerm)
		if err != nil {
			return fmt.Errorf("writing file %s: %w", file.Filename, err)
		}
	}

	return nil
}
