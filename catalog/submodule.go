package catalog

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
	"github.com/AiDave71/Bannerlord.LauncherManager/logger"
)

// SubModule.xml is the descriptor Bannerlord ships inside every module
// directory. Relations appear in two places: the vanilla DependedModules
// list and the extended DependedModuleMetadatas list, which adds ordering
// hints and incompatibilities.

type subModuleXML struct {
	XMLName   xml.Name     `xml:"Module"`
	Name      attrValue    `xml:"Name"`
	ID        attrValue    `xml:"Id"`
	Version   attrValue    `xml:"Version"`
	Official  attrValue    `xml:"Official"`
	DependedModules struct {
		Modules []dependedModuleXML `xml:"DependedModule"`
	} `xml:"DependedModules"`
	DependedModuleMetadatas struct {
		Metadatas []dependedMetadataXML `xml:"DependedModuleMetadata"`
	} `xml:"DependedModuleMetadatas"`
}

type attrValue struct {
	Value string `xml:"value,attr"`
}

type dependedModuleXML struct {
	ID               string `xml:"Id,attr"`
	DependentVersion string `xml:"DependentVersion,attr"`
	Optional         bool   `xml:"Optional,attr"`
}

type dependedMetadataXML struct {
	ID           string `xml:"id,attr"`
	Order        string `xml:"order,attr"` // LoadBeforeThis / LoadAfterThis
	Optional     bool   `xml:"optional,attr"`
	Incompatible bool   `xml:"incompatible,attr"`
	Version      string `xml:"version,attr"`
}

// ScanModulesDir reads every Modules/<name>/SubModule.xml under gamePath
// and assembles a catalog. Module directories without a readable descriptor
// are skipped with a warning; a missing Modules directory is an error.
//
// All modules found on disk are considered installed; the returned selection
// marks every module enabled, the caller overlays its own enablement state.
func ScanModulesDir(gamePath string) (*Catalog, Selection, error) {
	modulesDir := filepath.Join(gamePath, "Modules")
	entries, err := os.ReadDir(modulesDir)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to read modules directory %s", modulesDir)
	}

	log := logger.Logger.Named("catalog.scan")

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var modules []Module
	for _, name := range names {
		descriptorPath := filepath.Join(modulesDir, name, "SubModule.xml")
		data, err := os.ReadFile(descriptorPath)
		if err != nil {
			log.Warnw("Skipping module directory without descriptor",
				"dir", name,
				"error", err)
			continue
		}

		module, err := parseSubModule(data)
		if err != nil {
			log.Warnw("Skipping unreadable module descriptor",
				"dir", name,
				"error", err)
			continue
		}
		modules = append(modules, module)
	}

	selection := make(Selection, len(modules))
	for _, m := range modules {
		selection[m.ID] = true
	}

	log.Infow("Scanned game modules",
		"dir", modulesDir,
		"modules", len(modules))

	return New(modules), selection, nil
}

// parseSubModule maps one SubModule.xml document onto a Module descriptor
func parseSubModule(data []byte) (Module, error) {
	var sub subModuleXML
	if err := xml.Unmarshal(data, &sub); err != nil {
		return Module{}, errors.Wrap(errors.ErrInvalidCatalog, err.Error())
	}
	if sub.ID.Value == "" {
		return Module{}, errors.Wrap(errors.ErrInvalidCatalog, "descriptor has no module id")
	}

	module := Module{
		ID:       sub.ID.Value,
		Name:     sub.Name.Value,
		Version:  NormalizeVersion(sub.Version.Value),
		IsNative: strings.EqualFold(sub.Official.Value, "true"),
	}
	if module.Name == "" {
		module.Name = module.ID
	}

	for _, dep := range sub.DependedModules.Modules {
		if dep.ID == "" {
			continue
		}
		ref := ModuleRef{ID: dep.ID, Version: NormalizeVersion(dep.DependentVersion)}
		if dep.Optional {
			module.Optional = append(module.Optional, ref)
		} else {
			module.Required = append(module.Required, ref)
		}
	}

	for _, meta := range sub.DependedModuleMetadatas.Metadatas {
		if meta.ID == "" {
			continue
		}
		switch {
		case meta.Incompatible:
			module.Incompatible = append(module.Incompatible, meta.ID)
		case strings.EqualFold(meta.Order, "LoadBeforeThis"):
			// The referenced module loads before this one
			module.LoadAfter = append(module.LoadAfter, meta.ID)
		case strings.EqualFold(meta.Order, "LoadAfterThis"):
			module.LoadBefore = append(module.LoadBefore, meta.ID)
		case meta.Optional:
			module.Optional = append(module.Optional, ModuleRef{ID: meta.ID, Version: NormalizeVersion(meta.Version)})
		default:
			module.Required = append(module.Required, ModuleRef{ID: meta.ID, Version: NormalizeVersion(meta.Version)})
		}
	}

	module.Required = dedupeRefs(module.Required)
	module.Optional = dedupeRefs(module.Optional)
	module.LoadAfter = dedupeIDs(module.LoadAfter)
	module.LoadBefore = dedupeIDs(module.LoadBefore)
	module.Incompatible = dedupeIDs(module.Incompatible)

	return module, nil
}

// dedupeRefs keeps the first reference per id; vanilla and metadata lists
// frequently repeat the same dependency.
func dedupeRefs(refs []ModuleRef) []ModuleRef {
	if len(refs) < 2 {
		return refs
	}
	seen := make(map[string]bool, len(refs))
	out := refs[:0]
	for _, ref := range refs {
		if seen[ref.ID] {
			continue
		}
		seen[ref.ID] = true
		out = append(out, ref)
	}
	return out
}

func dedupeIDs(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
