// Package query models the iDigBio record and media query formats: the
// recognized filter fields, the value shapes each field accepts, and the
// validation rules that reject impossible queries before they reach the API.
package query

// Kind is the base type of a filter field.
type Kind int

const (
	String Kind = iota
	Bool
	Int
	Float
	Date
	Geo
)

// Field describes one recognized filter field. The registry below is the
// single source of truth: it drives value validation, the JSON schema handed
// to the language model, and the field documentation in prompts.
type Field struct {
	Name string
	Kind Kind
	Doc  string

	// NoExistence marks fields that are present on every record, where an
	// exists/missing marker would be meaningless.
	NoExistence bool

	// Enum restricts a string field to a closed set of values.
	Enum []string
}

// recordFields lists the fields of the iDigBio record query format, in
// documentation order.
var recordFields = []Field{
	{Name: "associatedsequences", Kind: String, Doc: "Identifiers (e.g., GenBank accession numbers or URIs) for genetic sequence data linked to the specimen or occurrence."},
	{Name: "barcodevalue", Kind: String, Doc: "Machine-readable barcode string printed on the physical specimen label."},
	{Name: "basisofrecord", Kind: String, Doc: "Specific nature of the data record (e.g., PreservedSpecimen, HumanObservation, MaterialSample)."},
	{Name: "bed", Kind: String, Doc: "The full name of the lithostratigraphic bed from which a material entity was collected."},
	{Name: "canonicalname", Kind: String, Doc: "The latinized elements of a scientific name, without authorship information, etc."},
	{Name: "catalognumber", Kind: String, Doc: "Identifier (preferably unique) for the record within its source collection or dataset."},
	{Name: "class", Kind: String, Doc: "The taxonomic class of an organism."},
	{Name: "collectioncode", Kind: String, Doc: "Acronym, code, or name designating the collection from which the record is derived."},
	{Name: "collectionid", Kind: String, Doc: "Globally unique identifier (GUID/URI) for the collection housing the material."},
	{Name: "collectionname", Kind: String, Doc: "Human-readable name of the collection that holds the record."},
	{Name: "collector", Kind: String, Doc: "Name(s) of the person(s) or organization(s) who recorded or collected the occurrence."},
	{Name: "commonname", Kind: String, Doc: `Common name for a specific species. Do not use for taxonomic groups like "birds" or "mammals".`},
	{Name: "continent", Kind: String, Doc: "Name of the continent containing the sampling location."},
	{Name: "country", Kind: String, Doc: "Full, accepted country name. For example “Canada” instead of the ISO code CA."},
	{Name: "county", Kind: String, Doc: "Full, unabbreviated name of the county (or equivalent) in which the location occurs."},
	{Name: "datecollected", Kind: Date, Doc: "Date the specimen or observation was collected (ISO 8601 formatted)."},
	{Name: "datemodified", Kind: Date, Doc: "Most recent date on which the digital record was changed (ISO 8601 formatted)."},
	{Name: "dqs", Kind: Float, Doc: "Data quality score for the record."},
	{Name: "etag", Kind: String, Doc: "Entity-tag string used by iDigBio to detect record version changes."},
	{Name: "eventdate", Kind: Date, Doc: "Date or date range during which the collecting event occurred (ISO 8601 formatted)."},
	{Name: "family", Kind: String, Doc: "Scientific name of the family in which the taxon is classified."},
	{Name: "fieldnumber", Kind: String, Doc: "Identifier assigned in the field to the collecting event, linking field notes and specimens."},
	{Name: "flags", Kind: String, Doc: "Semicolon-separated data-quality or processing flags applied to the record."},
	{Name: "genus", Kind: String, Doc: "Scientific name of the genus in which the taxon is classified."},
	{Name: "geopoint", Kind: Geo, Doc: "Decimal latitude/longitude pair (usually WGS 84) for the occurrence’s center point."},
	{Name: "hasImage", Kind: Bool, Doc: "True if the record has one or more associated images.", NoExistence: true},
	{Name: "highertaxon", Kind: String, Doc: "Pipe-separated list of higher taxonomic ranks above the taxon (e.g., “Animalia | Chordata | Mammalia”)."},
	{Name: "infraspecificepithet", Kind: String, Doc: "Lowest infraspecific epithet of the scientific name (e.g., “oxyadenia”)."},
	{Name: "institutioncode", Kind: String, Doc: "The name (or acronym) in use by the institution having custody of the object(s) or information referred to in the record."},
	{Name: "institutionid", Kind: String, Doc: "An identifier for the institution having custody of the object(s) or information referred to in the record."},
	{Name: "institutionname", Kind: String, Doc: "Full name of the institution that owns or manages the collection or data."},
	{Name: "kingdom", Kind: String, Doc: "Scientific name of the kingdom in which the taxon is classified."},
	{Name: "locality", Kind: String, Doc: "Specific descriptive text of the place where the specimen was collected or observed."},
	{Name: "maxdepth", Kind: Float, Doc: "Greater depth (metres) below the local surface at which the record was made."},
	{Name: "maxelevation", Kind: Float, Doc: "Upper limit of elevation (metres above sea level) at the site."},
	{Name: "mediarecords", Kind: String, Doc: "Identifiers or URLs of media (images, audio, video) associated with the record."},
	{Name: "mindepth", Kind: Float, Doc: "Lesser depth (metres) below the local surface at which the record was made."},
	{Name: "minelevation", Kind: Float, Doc: "Lower limit of elevation (metres above sea level) at the site."},
	{Name: "municipality", Kind: String, Doc: "Name of the municipality or city containing the location."},
	{Name: "occurrenceid", Kind: String, Doc: "Globally unique identifier (GUID/URI) for the occurrence itself."},
	{Name: "order", Kind: String, Doc: "Scientific name of the order in which the taxon is classified."},
	{Name: "phylum", Kind: String, Doc: "Scientific name of the phylum or division in which the taxon is classified."},
	{Name: "recordids", Kind: String, Doc: "Comma-separated list of specific iDigBio record UUIDs to include in the query."},
	{Name: "recordnumber", Kind: String, Doc: "Collector’s number assigned to the occurrence at the time of collection."},
	{Name: "recordset", Kind: String, Doc: "Identifier for an iDigBio recordset (dataset) used to filter the query."},
	{Name: "scientificname", Kind: String, Doc: "Full scientific name, including authorship, applied to the organism."},
	{Name: "specificepithet", Kind: String, Doc: "Species epithet component of the scientific name."},
	{Name: "stateprovince", Kind: String, Doc: "Name of the primary administrative region (state, province, region) for the location."},
	{Name: "taxonid", Kind: String, Doc: "An identifier for the set of dwc:Taxon information. May be a global unique identifier or an identifier specific to the data set."},
	{Name: "taxonomicstatus", Kind: String, Doc: "The status of the use of the scientific name as a label for a taxon (e.g., accepted, invalid, misapplied)."},
	{Name: "taxonrank", Kind: String, Doc: "Taxonomic rank of the most specific name (e.g., species, subspecies, genus)."},
	{Name: "typestatus", Kind: String, Doc: "A list (concatenated and separated) of nomenclatural types (type status, typified scientific name, publication) applied to the subject."},
	{Name: "uuid", Kind: String, Doc: "An internal identifier used by iDigBio to identify the record."},
	{Name: "verbatimeventdate", Kind: String, Doc: "Original, unaltered text of the collection date as it appears on the label or notes."},
	{Name: "verbatimlocality", Kind: String, Doc: "Original, unaltered locality description from the specimen label."},
	{Name: "version", Kind: Int, Doc: "Integer representing the current revision number of the record in iDigBio."},
	{Name: "waterbody", Kind: String, Doc: "Name of the water body (ocean, sea, lake, river) in which the location occurs."},
}

// mediaFields lists the fields of the iDigBio media query format.
var mediaFields = []Field{
	{Name: "accessuri", Kind: String, Doc: "URI at which the media content can be accessed."},
	{Name: "datemodified", Kind: Date, Doc: `The "datemodified" field in the original media record.`},
	{Name: "etag", Kind: String, Doc: "Entity-tag string used by iDigBio to detect media record version changes."},
	{Name: "licenselogourl", Kind: String, Doc: "URL of the logo for the license that applies to the media."},
	{Name: "mediatype", Kind: String, Doc: `The kind of media. Must be "images" or "sounds".`, Enum: []string{"images", "sounds"}},
	{Name: "modified", Kind: Date, Doc: "Last time the media record changed in iDigBio, whether the original record or iDigBio's metadata."},
	{Name: "recordids", Kind: String, Doc: "Comma-separated list of specific iDigBio media record UUIDs to include in the query."},
	{Name: "records", Kind: String, Doc: "UUIDs for records that are associated with the media record."},
	{Name: "recordset", Kind: String, Doc: "The record set that the media record is a part of."},
	{Name: "rights", Kind: String, Doc: "Rights statement or license that applies to the media."},
	{Name: "uuid", Kind: String, Doc: "An identifier used by iDigBio to identify the media record."},
	{Name: "version", Kind: Int, Doc: "Integer representing the current revision number of the media record in iDigBio."},
}

func indexFields(fields []Field) map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return m
}

var (
	recordFieldIndex = indexFields(recordFields)
	mediaFieldIndex  = indexFields(mediaFields)
)

// RecordFields returns the record query fields in documentation order.
func RecordFields() []Field { return recordFields }

// RecordField looks up a record query field by name.
func RecordField(name string) (Field, bool) {
	f, ok := recordFieldIndex[name]
	return f, ok
}

// MediaFields returns the media query fields in documentation order.
func MediaFields() []Field { return mediaFields }

// MediaField looks up a media query field by name.
func MediaField(name string) (Field, bool) {
	f, ok := mediaFieldIndex[name]
	return f, ok
}
