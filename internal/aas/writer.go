package aas

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const environmentEntry = "aasx/environment.json"

// WritePackage serializes the environment and every referenced file into a
// single zip package at path.
func WritePackage(path string, env *Environment, files *FileStore) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create package %s: %w", path, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	w, err := zw.Create(environmentEntry)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return fmt.Errorf("encode environment: %w", err)
	}

	for _, f := range files.Files() {
		if err := addFile(zw, f); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize package: %w", err)
	}
	return out.Close()
}

func addFile(zw *zip.Writer, f StoredFile) error {
	src, err := os.Open(f.Source)
	if err != nil {
		return fmt.Errorf("open referenced file %s: %w", f.Source, err)
	}
	defer src.Close()

	w, err := zw.Create(strings.TrimPrefix(f.Internal, "/"))
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("package %s: %w", f.Internal, err)
	}
	return nil
}
