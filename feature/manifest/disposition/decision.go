package disposition

// Disposition is where an asset stands relative to this manifest.
type Disposition string

const (
	New                  Disposition = "New"
	ManagedSameManifest  Disposition = "ManagedSameManifest"
	ManagedOtherManifest Disposition = "ManagedOtherManifest"
	ManagedExternally    Disposition = "ManagedExternally"
	Unmanaged            Disposition = "Unmanaged"
)

// IngestMode says whether and how an asset is submitted for ingestion.
type IngestMode string

const (
	NoIngest                 IngestMode = "NoIngest"
	IngestWithManifestTag    IngestMode = "IngestWithManifestTag"
	IngestWithoutManifestTag IngestMode = "IngestWithoutManifestTag"
)

// Facts are the per-asset inputs of a decision.
type Facts struct {
	// NewSpaceMatches is set when a space was created for this request and the asset lives in it.
	NewSpaceMatches      bool
	OwnedBySameManifest  bool
	OwnedByOtherManifest bool
	Reingest             bool
	// KnownExternally is the bulk existence result. It is only consulted for assets
	// owned by no manifest and not flagged for reingest.
	KnownExternally bool
}

// Decision is the action required for one asset.
type Decision struct {
	Disposition Disposition `json:"disposition"`
	Ingest      IngestMode  `json:"ingest"`
	Patch       bool        `json:"patch"`
}

// NeedsExistenceLookup reports whether Decide would consult KnownExternally.
func (f Facts) NeedsExistenceLookup() bool {
	return !f.NewSpaceMatches && !f.OwnedBySameManifest && !f.OwnedByOtherManifest && !f.Reingest
}

// Decide applies the disposition table in precedence order.
func Decide(f Facts) Decision {
	switch {
	case f.NewSpaceMatches:
		return Decision{Disposition: New, Ingest: IngestWithManifestTag}
	case f.OwnedBySameManifest:
		if f.Reingest {
			return Decision{Disposition: ManagedSameManifest, Ingest: IngestWithoutManifestTag}
		}
		return Decision{Disposition: ManagedSameManifest, Ingest: NoIngest}
	case f.OwnedByOtherManifest:
		if f.Reingest {
			return Decision{Disposition: ManagedOtherManifest, Ingest: IngestWithoutManifestTag, Patch: true}
		}
		return Decision{Disposition: ManagedOtherManifest, Ingest: NoIngest, Patch: true}
	case f.Reingest:
		return Decision{Disposition: Unmanaged, Ingest: IngestWithManifestTag}
	case f.KnownExternally:
		return Decision{Disposition: ManagedExternally, Ingest: NoIngest, Patch: true}
	default:
		return Decision{Disposition: Unmanaged, Ingest: IngestWithManifestTag}
	}
}
