// Package prompt builds the system instructions for each operation: a fixed
// template, the query format documentation, and a small set of hand-authored
// worked examples rendered as conversation turns.
package prompt

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/envelope"
	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/params"
	"github.com/acislab/ichatbio-idigbio-agent/internal/domain/query"
)

//go:embed resources/records_query_format.md
var recordsQueryFormatDoc string

//go:embed resources/occurrence_records_examples.md
var occurrenceExamplesDoc string

// example is one worked request/response pair.
type example struct {
	request  string
	response any
}

func renderExamples(examples []example) string {
	var sb strings.Builder
	for i, ex := range examples {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		response, err := json.Marshal(ex.response)
		if err != nil {
			panic(fmt.Sprintf("prompt: render example %d: %v", i, err))
		}
		fmt.Fprintf(&sb, "# Example %d\n\nUser: %s\n\nYou: %s", i, ex.request, response)
	}
	return sb.String()
}

func intPtr(n int) *int { return &n }

const occurrenceTemplate = `You translate user requests into parameters for the iDigBio record search API.

# Query format

Here is a description of how iDigBio queries are formatted:

[BEGIN QUERY FORMAT DOC]

%s

[END QUERY FORMAT DOC]

# Tips

- Searching by lists performs an OR operation. For example, a search for "genus":["Ursus","Puffinus"] will return Ursus records and ALSO Puffinus records, it will NOT return co-occurrences of Ursus and Puffinus.

- The iDigBio API can NOT perform searches that relate records to each other. For example, it cannot retrieve records that are near other records unless the locations of those records can be specified as search parameters.

- Do not choose search parameters that only partially fulfill the user's request. Instead, you should abort (don't set any search parameters) and explain why.

%s`

// ForOccurrenceSearch builds the system prompt for the occurrence records
// operation.
func ForOccurrenceSearch() string {
	type env = envelope.Envelope[params.OccurrenceSearch]

	examples := []example{
		{
			request: "Homo sapiens",
			response: env{
				Plan: "The name Homo sapiens doesn't have authority specified, so I will search" +
					" by genus and specificepithet instead of scientificname",
				SearchParameters: &params.OccurrenceSearch{
					RQ: queryPtr(`{"genus": "Homo", "specificepithet": "sapiens"}`),
				},
				ArtifactDescription: "Occurrence records for the species Homo sapiens",
			},
		},
		{
			request: "Only Homo sapiens Linnaeus, 1758",
			response: env{
				Plan: "The name includes authority information, so I will search by scientificname",
				SearchParameters: &params.OccurrenceSearch{
					RQ: queryPtr(`{"scientificname": "Homo sapiens Linnaeus, 1758"}`),
				},
				ArtifactDescription: `Occurrence records for the species "Homo sapiens Linnaeus, 1758"`,
			},
		},
		{
			request: `Scientific name "this is fake but use it anyway"`,
			response: env{
				Plan: "The request placed a scientific name in quotes, so I will search by" +
					" scientificname for an exact match",
				SearchParameters: &params.OccurrenceSearch{
					RQ: queryPtr(`{"scientificname": "this is fake but use it anyway"}`),
				},
				ArtifactDescription: `Occurrence records for the species "this is fake but use it anyway"`,
			},
		},
		{
			request: "kingdom must be specified",
			response: env{
				Plan: `To find records that have the kingdom field, I need to search by kingdom for {"type": "exists"}`,
				SearchParameters: &params.OccurrenceSearch{
					RQ: queryPtr(`{"kingdom": {"type": "exists"}}`),
				},
				ArtifactDescription: "Occurrence records with the kingdom field specified",
			},
		},
		{
			request: "Records with no collector specified",
			response: env{
				Plan: `To find records with no collector field, I need to search by collector for {"type": "missing"}`,
				SearchParameters: &params.OccurrenceSearch{
					RQ: queryPtr(`{"collector": {"type": "missing"}}`),
				},
				ArtifactDescription: "Occurrence records with no collector specified",
			},
		},
		{
			request: "Homo sapiens and Rattus rattus in North America and Australia",
			response: env{
				Plan: "The request concerns two species (Homo sapiens and Rattus rattus) in two" +
					" continents (North America and Australia), so I will search using the" +
					" scientificname and continent fields, specifying the search values using" +
					" list syntax.",
				SearchParameters: &params.OccurrenceSearch{
					RQ: queryPtr(`{"scientificname": ["Homo sapiens", "Rattus rattus"],` +
						` "continent": ["North America", "Australia"]}`),
				},
				ArtifactDescription: "Occurrence records of Homo sapiens and Rattus rattus in" +
					" North America and Australia",
			},
		},
		{
			request: "Find Rattus rattus occurrences near Naja naja occurrences",
			response: env{
				Plan: "The iDigBio API cannot relate records to each other, so searching for" +
					" occurrences of one species near occurrences of another species is not" +
					" possible. I should abort.",
			},
		},
	}

	return fmt.Sprintf(occurrenceTemplate, strings.TrimSpace(recordsQueryFormatDoc), renderExamples(examples))
}

const summaryTemplate = `You translate user requests into parameters for the iDigBio records summary API.

# Query format

Here is a description of how iDigBio queries are formatted:

[BEGIN QUERY FORMAT DOC]

%s

[END QUERY FORMAT DOC]

# General rq object examples

%s

# Tips

- Searching by lists performs an OR operation, never an AND.

- To count unique values of a field instead of building a top-N list, set "count" to the maximum allowed.

%s`

// ForSummary builds the system prompt for the aggregate count operation.
func ForSummary() string {
	type env = envelope.Envelope[params.Summary]

	examples := []example{
		{
			request: "Count number of species of Aves",
			response: env{
				Plan: "Counting species means breaking record counts down by scientificname at" +
					" taxonomic rank species, restricted to class Aves.",
				SearchParameters: &params.Summary{
					TopFields: params.NewTopFields("scientificname"),
					RQ:        queryPtr(`{"class": "Aves", "taxonrank": "species"}`),
				},
				ArtifactDescription: "Per-species record counts for class Aves",
			},
		},
		{
			request: "Which 5 countries have the most records of Rattus rattus?",
			response: env{
				Plan: "A top-5 list of countries means breaking counts down by country with a" +
					" count of 5, restricted to the species Rattus rattus.",
				SearchParameters: &params.Summary{
					TopFields: params.NewTopFields("country"),
					Count:     intPtr(5),
					RQ:        queryPtr(`{"genus": "Rattus", "specificepithet": "rattus"}`),
				},
				ArtifactDescription: "Per-country record counts for the species Rattus rattus",
			},
		},
		{
			request: "Who collected the most lichens?",
			response: env{
				Plan: "Collectors with the most records means breaking counts down by the" +
					" collector field, restricted to lichen-forming fungi.",
				SearchParameters: &params.Summary{
					TopFields: params.NewTopFields("collector"),
					RQ:        queryPtr(`{"commonname": "lichens"}`),
				},
				ArtifactDescription: "Per-collector record counts for lichens",
			},
		},
	}

	return fmt.Sprintf(
		summaryTemplate,
		strings.TrimSpace(recordsQueryFormatDoc),
		strings.TrimSpace(occurrenceExamplesDoc),
		renderExamples(examples),
	)
}

const mediaTemplate = `You translate user requests into parameters for the iDigBio media search API.

# Query format

Here is a description of how iDigBio queries are formatted. Media queries ("mq") use the same shapes with media fields such as mediatype.

[BEGIN QUERY FORMAT DOC]

%s

[END QUERY FORMAT DOC]

# Tips

- Searching by lists performs an OR operation. For example, a search for "genus":["Ursus","Puffinus"] will return Ursus records and ALSO Puffinus records, it will NOT return co-occurrences of Ursus and Puffinus.

- Do not choose search parameters that only partially fulfill the user's request. Instead, you should abort (don't set any search parameters) and explain why.

%s`

// ForMediaSearch builds the system prompt for the media records operation.
func ForMediaSearch() string {
	type env = envelope.Envelope[params.MediaSearch]

	examples := []example{
		{
			request: "Homo sapiens",
			response: env{
				Plan: "The request only specifies occurrence-related information, I will search" +
					" using rq fields. The name doesn't have authority specified, so I will" +
					" search by genus and specificepithet instead of scientificname",
				SearchParameters: &params.MediaSearch{
					RQ: queryPtr(`{"genus": "Homo", "specificepithet": "sapiens"}`),
				},
				ArtifactDescription: "Media records associated with the species Homo sapiens",
			},
		},
		{
			request: "Audio of Homo sapiens",
			response: env{
				Plan: `To filter for audio media I need to use the mq field and search by` +
					` mediatype. The mediatype for audio is "sounds". The request doesn't` +
					` specify an authority for the name Homo sapiens, so I will search by genus` +
					` and specificepithet instead of scientificname`,
				SearchParameters: &params.MediaSearch{
					RQ: queryPtr(`{"genus": "Homo", "specificepithet": "sapiens"}`),
					MQ: mediaQueryPtr(`{"mediatype": "sounds"}`),
				},
				ArtifactDescription: "Audio recordings of the species Homo sapiens",
			},
		},
		{
			request: "Pictures of Rattus rattus in Taiwan",
			response: env{
				Plan: `To filter for picture media I need to use the mq field and search by` +
					` mediatype. The mediatype for pictures is "images". To filter by species` +
					` and place, I need to use the rq field. The request doesn't specify an` +
					` authority for the name Rattus rattus, so I will search by genus and` +
					` specificepithet instead of scientificname`,
				SearchParameters: &params.MediaSearch{
					RQ: queryPtr(`{"genus": "Rattus", "specificepithet": "rattus", "country": "Taiwan"}`),
					MQ: mediaQueryPtr(`{"mediatype": "images"}`),
				},
				ArtifactDescription: "Pictures of the species Rattus rattus in Taiwan",
			},
		},
		{
			request: "Blurry images in Canada",
			response: env{
				Plan: "There are no search parameters for image quality, so I should abort.",
			},
		},
		{
			request: "Images of blue plants",
			response: env{
				Plan: "There are no search parameters for color or other image features, so I should abort.",
			},
		},
	}

	return fmt.Sprintf(mediaTemplate, strings.TrimSpace(recordsQueryFormatDoc), renderExamples(examples))
}

func queryPtr(literal string) *query.Query {
	q := query.MustParse(literal)
	return &q
}

func mediaQueryPtr(literal string) *query.MediaQuery {
	m := query.MustParseMedia(literal)
	return &m
}
