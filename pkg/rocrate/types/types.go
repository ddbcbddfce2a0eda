package types

import "regexp"

const (
	RootID       string = "./"
	DescriptorID string = "ro-crate-metadata.json"

	PreviewFile   string = "ro-crate-preview.html"
	PreviewFolder string = "ro-crate-preview_files"

	ProfileURL         string = "https://w3id.org/ro/crate/1.1"
	DefaultContextURL  string = "https://w3id.org/ro/crate/1.1/context"
	MetadataMediaType  string = "application/ld+json"
	KeywordID          string = "@id"
	KeywordType        string = "@type"
	KeywordContext     string = "@context"
	KeywordGraph       string = "@graph"
	PropertyHasPart    string = "hasPart"
	PropertyConformsTo string = "conformsTo"
	PropertyAbout      string = "about"
)

const (
	CreativeWorkTypeName          string = "CreativeWork"
	DatasetTypeName               string = "Dataset"
	FileTypeName                  string = "File"
	PersonTypeName                string = "Person"
	OrganizationTypeName          string = "Organization"
	PlaceTypeName                 string = "Place"
	ContactPointTypeName          string = "ContactPoint"
	GeoCoordinatesTypeName        string = "GeoCoordinates"
	CreateActionTypeName          string = "CreateAction"
	SoftwareSourceCodeTypeName    string = "SoftwareSourceCode"
	ComputationalWorkflowTypeName string = "ComputationalWorkflow"
)

var profilePattern = regexp.MustCompile(`^https?://w3id\.org/ro/crate/[0-9]+\.[0-9]+(-[A-Za-z0-9]+)?/?$`)

// IsProfile reports whether id names a version of the RO-Crate profile
func IsProfile(id string) bool {
	return profilePattern.MatchString(id)
}

// IsReserved reports whether a relative path inside a crate belongs to the
// metadata document or the preview and must never be treated as payload.
func IsReserved(path string) bool {
	if path == DescriptorID || path == PreviewFile || path == PreviewFolder {
		return true
	}
	return len(path) > len(PreviewFolder) && path[:len(PreviewFolder)+1] == PreviewFolder+"/"
}
