package provenance

import (
	"context"

	"provl/internal/signing"
)

// jsonLDContext maps the prefixes used in provenance exports. The vocabulary
// mixes Dublin Core identifiers, PREMIS object semantics, and PROV activity
// relations.
var jsonLDContext = map[string]any{
	"@version":   1.1,
	"dc":         "http://purl.org/dc/elements/1.1/",
	"premis":     "http://www.loc.gov/premis/rdf/v1#",
	"prov":       "http://www.w3.org/ns/prov#",
	"provenance": "urn:provenance:",
}

// ExportJSONLD renders an object and its full event chain as a JSON-LD
// document: the object as a premis:Object, each event as a prov activity
// attributed to its actor and informed by its predecessor.
func (s *Service) ExportJSONLD(ctx context.Context, objectID string) (map[string]any, error) {
	obj, err := s.store.GetObject(ctx, objectID)
	if err != nil {
		return nil, err
	}
	chain, err := s.store.GetChain(ctx, objectID)
	if err != nil {
		return nil, err
	}

	activities := make([]map[string]any, 0, len(chain))
	for _, ev := range chain {
		node := map[string]any{
			"@id":         "urn:provenance:event:" + ev.EventHash,
			"@type":       "provenance:" + string(ev.EventType),
			"prov:atTime": signing.FormatTimestamp(ev.Timestamp),
			"prov:wasAttributedTo": map[string]any{
				"@id":                "urn:actor:" + ev.ActorID,
				"provenance:actorId": ev.ActorID,
			},
			"provenance:signature": ev.Signature,
			"provenance:payload":   ev.Payload,
		}
		if ev.PrevEventHash != "" {
			node["prov:wasInformedBy"] = map[string]any{
				"@id": "urn:provenance:event:" + ev.PrevEventHash,
			}
		}
		if ev.Anchored {
			node["provenance:anchorBatch"] = ev.BatchID
		}
		activities = append(activities, node)
	}

	return map[string]any{
		"@context":            jsonLDContext,
		"@id":                 "urn:object:" + obj.ObjectID,
		"@type":               "premis:Object",
		"dc:identifier":       obj.ObjectID,
		"dc:created":          signing.FormatTimestamp(obj.CreatedAt),
		"provenance:cid":      obj.CID,
		"prov:wasGeneratedBy": activities,
	}, nil
}
