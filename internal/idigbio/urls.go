package idigbio

import (
	"encoding/json"
	"fmt"
)

// Default service bases. The config layer can override them, which also
// points tests at a local stand-in.
const (
	DefaultSearchAPIBase   = "https://search.idigbio.org"
	DefaultPortalBase      = "https://portal.idigbio.org"
	DefaultDownloadAPIBase = "https://api.idigbio.org"
)

// Search API endpoints.
const (
	RecordsSearchPath = "/v2/search/records"
	MediaSearchPath   = "/v2/search/media"
	TopRecordsPath    = "/v2/summary/top/records"
	DownloadPath      = "/v2/download"
)

// APIURL builds a search API URL with the parameter object encoded into the
// query string. A nil params produces a bare endpoint URL.
func APIURL(base, endpoint string, params json.RawMessage) (string, error) {
	return withParams(base+endpoint, params)
}

// PortalSearchURL builds a link showing the same query in the iDigBio
// search portal.
func PortalSearchURL(base string, params json.RawMessage) (string, error) {
	return withParams(base+"/portal/search", params)
}

// MediaRecordPageURL builds the portal page for an individual media record.
func MediaRecordPageURL(base, uuid string) string {
	return fmt.Sprintf("%s/portal/mediarecords/%s", base, uuid)
}

// DownloadURL builds a data API download URL for the given parameters.
func DownloadURL(base string, params json.RawMessage) (string, error) {
	return withParams(base+DownloadPath, params)
}

func withParams(url string, params json.RawMessage) (string, error) {
	if params == nil {
		return url, nil
	}
	encoded, err := EncodeParams(params)
	if err != nil {
		return "", err
	}
	return url + "?" + encoded, nil
}
