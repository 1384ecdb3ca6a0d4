package mcpserver

// InputFormatContract describes the job documents GKG accepts. LLM
// consumers should read it before computing or submitting jobs.
const InputFormatContract = `# GKG Job Document Contract

A job is one route subgraph plus the routing result computed on it. Send it
as JSON or YAML. Inbox files end with ` + "`.json`, `.yaml` or `.yml`" + `.

## Structure

` + "```" + `json
{
  "name": "optional label, defaults to the file name",
  "subgraph": {
    "vertices": {
      "NK": [{"id": 1}],
      "SK": [{"id": 10}],
      "AR": [{"id": 20}],
      "SK_PLUS_ONE": [{"id": 30}],
      "SK_MINUS_ONE": [{"id": 40}],
      "FEATURES": [{"id": "f1", "type": "OSM_POINTS", "geometry": [-0.1276, 51.5072]}]
    },
    "edges": {
      "NK_SK_BOUNDS": [{"edge_id": 100, "parent": 1, "child": 10}],
      "NK_AR_ACTIVATES": [{"edge_id": 101, "parent": 1, "child": 20}],
      "NK_SK_PLUS_ONE_BOUNDS": [{"edge_id": 102, "parent": 1, "child": 30}],
      "SK_SK_MINUS_ONE_IN_REGION": [{"edge_id": 103, "parent": 10, "child": 40}],
      "CONTAINS_FEATURE": [{"edge_id": 104, "parent": 20, "child": "f1"}]
    }
  },
  "result": {
    "nk_routing_nodes": [
      {"id": 1, "type": "train", "active": "transfer"}
    ]
  }
}
` + "```" + `

## Rules

1. **Categories are fixed.** Vertex lists: NK, SK, AR, SK_PLUS_ONE, SK_MINUS_ONE,
   FEATURES. Edge lists: the five shown above. Any other key is rejected. Missing
   lists are empty.
2. **Ids** are numbers or strings and are kept as given. Ids are unique within a
   vertex category; a repeated id refers to its first occurrence.
3. **Edges point parent to child** in the direction shown by the list name
   (NK to SK, NK to AR, NK to SK_PLUS_ONE, SK to SK_MINUS_ONE, AR to FEATURES).
   Both endpoints must exist in the matching vertex lists, otherwise the job is
   rejected with the offending edge.
4. **Geometry** is optional: ` + "`[lon, lat]`" + ` or WKT (` + "`POINT (lon lat)`" + `).
   Features with geometry are exported by the GeoJSON views.
5. **Routing nodes** are in route order and need an id. Their ` + "`type`" + ` is one of
   intersection, connecting, entrance-exit, bus, train and ` + "`active`" + ` one of
   traverse, turn, transfer. Pairs with no template (see get_schemes) are reported
   as unmapped and contribute nothing. Nodes missing from NK are skipped.
6. **Transfers** split the route into phase regions: first node, every
   ` + "`transfer`" + ` node in between, last node.

## Output

Each job yields five views, one per conceptual scale 0 (coarsest) to 4 (finest),
listing the variable indexes selected in SK, SK_PLUS_ONE, SK_MINUS_ONE and
FEATURES. Indexes point into the ` + "`features`" + ` array of the payload.
`
