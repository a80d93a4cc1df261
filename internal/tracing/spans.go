package tracing

// Span attribute keys for registry tracing.
const (
	// Asset attributes
	AttrAssetID      = "asset.id"
	AttrAssetType    = "asset.type"
	AttrAssetPath    = "asset.path"
	AttrAssetVersion = "asset.version"

	// Import attributes
	AttrImportValidate  = "import.validate"
	AttrImportMigrate   = "import.migrate"
	AttrImportTrackDeps = "import.track_dependencies"

	// Scan attributes
	AttrScanRoot      = "scan.root"
	AttrScanRecursive = "scan.recursive"
	AttrScanImported  = "scan.imported"
	AttrScanFailed    = "scan.failed"

	// Migration attributes
	AttrMigrateFrom  = "migrate.from"
	AttrMigrateTo    = "migrate.to"
	AttrMigrateSteps = "migrate.steps"

	// Error attributes
	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanImportAsset     = "registry.import_asset"
	SpanReimportAsset   = "registry.reimport_asset"
	SpanImportDirectory = "registry.import_directory"
	SpanMigrate         = "registry.migrate"
	SpanSaveIndex       = "registry.save_index"
	SpanLoadIndex       = "registry.load_index"
)
