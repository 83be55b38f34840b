package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Syntax (parsing collaborator)
	SynInfo       Code = 2000
	SynParseError Code = 2001

	// Transformation
	XfmInfo           Code = 3000
	XfmTransformError Code = 3001

	// I/O
	IOInfo          Code = 4000
	IOLoadFileError Code = 4001
	IOWriteError    Code = 4002

	// Project / graph
	ProjInfo              Code = 5000
	ProjUnresolvedImport  Code = 5001
	ProjInvalidImportPath Code = 5002
	ProjSelfImport        Code = 5003
	ProjImportCycle       Code = 5004
	ProjDuplicateImport   Code = 5005
	ProjInvalidManifest   Code = 5006
	ProjBrokenTable       Code = 5007

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		SynInfo:               "Syntax information",
		SynParseError:         "Source is not valid JavaScript",
		XfmInfo:               "Transform information",
		XfmTransformError:     "Module body could not be transformed",
		IOInfo:                "I/O information",
		IOLoadFileError:       "I/O load file error",
		IOWriteError:          "I/O write error",
		ProjInfo:              "Project information",
		ProjUnresolvedImport:  "Import does not resolve to a readable module",
		ProjInvalidImportPath: "Invalid import path",
		ProjSelfImport:        "Module imports itself",
		ProjImportCycle:       "Import cycle detected",
		ProjDuplicateImport:   "Module imports the same path more than once",
		ProjInvalidManifest:   "Invalid minipack.toml",
		ProjBrokenTable:       "Module table violates its invariants",
		ObsInfo:               "Observability information",
		ObsTimings:            "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("XFM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
