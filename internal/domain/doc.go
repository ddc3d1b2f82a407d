// Package domain models USGS earthquake event data.
//
// # Data Source
//
// Events come from the USGS FDSN event web service,
// https://earthquake.usgs.gov/fdsnws/event/1/query, requested with
// format=geojson. The response is a GeoJSON FeatureCollection; each feature
// carries the fields the client cares about in its "properties" object:
//
//	{
//	  "type": "FeatureCollection",
//	  "features": [
//	    {"type": "Feature", "properties": {
//	      "mag": 6.2,
//	      "place": "74km NW of Rumoi, Japan",
//	      "time": 1454124312220,
//	      "url": "https://earthquake.usgs.gov/earthquakes/eventpage/us20004vvx"
//	    }}
//	  ]
//	}
//
// # Field Conventions
//
// Magnitude ("mag"):
//
//	Decimal magnitude, usually 0–10. Null or missing for some reviewed events.
//	Missing, null, or non-finite values decode as 0.
//
// Place ("place"):
//
//	Free text. Most events use "<distance> <compass> of <name>", e.g.
//	"5km N of Quepos, Costa Rica". Offshore and regional events often carry
//	only a region name ("Costa Rica", "Mid-Indian Ridge").
//
// Time ("time"):
//
//	Origin time in milliseconds since the Unix epoch, UTC.
//
// URL ("url"):
//
//	Event page on earthquake.usgs.gov.
//
// # Decoding Policy
//
// [ParseFeed] is total: it never returns an error and never returns nil.
// A body that is not an object, or has no "features" array, decodes to an
// empty slice. Individual features that are not objects, or have no
// "properties" object, are dropped without failing the batch. Missing
// properties take zero values. Feed order is preserved; the client never
// re-sorts because the query's "orderby" parameter already chose the order.
package domain
