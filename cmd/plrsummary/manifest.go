package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lei/plr-summary/internal/models"
)

// manifests holds the Tekton objects read from files
type manifests struct {
	PipelineRuns []models.PipelineRun
	TaskRuns     []models.TaskRun
}

// readManifestFile reads a manifest file, or stdin for "-"
func readManifestFile(path string, stdin io.Reader) (*manifests, error) {
	if path == "-" {
		return decodeManifests(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := decodeManifests(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// decodeManifests accepts multi-document YAML or JSON holding PipelineRuns,
// TaskRuns or lists of them. Other kinds are skipped.
func decodeManifests(r io.Reader) (*manifests, error) {
	out := &manifests{}
	dec := yaml.NewDecoder(r)

	for {
		var doc map[string]interface{}
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("parse manifest: %w", err)
		}
		if err := out.add(doc); err != nil {
			return nil, err
		}
	}
}

func (m *manifests) add(doc map[string]interface{}) error {
	if doc == nil {
		return nil
	}

	kind, _ := doc["kind"].(string)
	switch {
	case kind == "PipelineRun":
		var pr models.PipelineRun
		if err := convert(doc, &pr); err != nil {
			return fmt.Errorf("decode PipelineRun: %w", err)
		}
		m.PipelineRuns = append(m.PipelineRuns, pr)
	case kind == "TaskRun":
		var tr models.TaskRun
		if err := convert(doc, &tr); err != nil {
			return fmt.Errorf("decode TaskRun: %w", err)
		}
		m.TaskRuns = append(m.TaskRuns, tr)
	case kind == "List" || strings.HasSuffix(kind, "List"):
		items, _ := doc["items"].([]interface{})
		for _, item := range items {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			// Typed lists omit the kind on their items
			if _, ok := obj["kind"]; !ok && kind != "List" {
				obj["kind"] = strings.TrimSuffix(kind, "List")
			}
			if err := m.add(obj); err != nil {
				return err
			}
		}
	}
	return nil
}

// convert maps a decoded YAML document onto the JSON-tagged models
func convert(doc map[string]interface{}, out interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
