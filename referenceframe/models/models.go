// Package models holds the built-in kinematic descriptors.
package models

import (
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/kinematics/referenceframe"
)

//go:embed data/*.json data/*.yaml
var data embed.FS

// Names lists the built-in models, e.g. "panda" and "panda_tree".
func Names() []string {
	entries, err := data.ReadDir("data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// Load parses the built-in model called name.
func Load(name string) (*referenceframe.Model, error) {
	entries, err := data.ReadDir("data")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		ext := path.Ext(e.Name())
		if strings.TrimSuffix(e.Name(), ext) != name {
			continue
		}
		raw, err := data.ReadFile(path.Join("data", e.Name()))
		if err != nil {
			return nil, err
		}
		if ext == ".json" {
			return referenceframe.UnmarshalModelJSON(raw, "")
		}
		return referenceframe.UnmarshalModelYAML(raw, "")
	}
	return nil, errors.Errorf("no built-in model %q, have %v", name, Names())
}

// Panda returns the Franka Emika Panda arm as a seven joint chain.
func Panda() *referenceframe.Model {
	m, err := Load("panda")
	if err != nil {
		panic(err)
	}
	return m
}

// PandaTree returns the Panda as a link tree including the two gripper fingers.
func PandaTree() *referenceframe.Model {
	m, err := Load("panda_tree")
	if err != nil {
		panic(err)
	}
	return m
}
