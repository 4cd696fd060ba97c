// Package input loads declared projects and machines from a JSON document
// supplied by the caller, the parser layer spec §6 calls out as the
// boundary between whatever format a migration plan is authored in and the
// engine's typed declarations.
package input

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/catherinevee/migrateguard/internal/model"
)

// Document is the on-disk shape of a migration plan: a list of project
// declarations and the machines targeted against them.
type Document struct {
	Projects []model.ProjectDecl `json:"projects"`
	Machines []model.MachineDecl `json:"machines"`
}

// Load reads and decodes a plan document from path. It does not validate
// field contents beyond well-formed JSON; the Check Library is where
// semantic validation against live Azure state happens.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse plan document: %w", err)
	}
	return &doc, nil
}
