// Package mapping holds the user configuration of a mapper: rules, the scopes
// they apply to, conflict detection and the YAML rule files.
//
// # Rules
//
// A rule applies within a Scope, an (intent, source type, target type)
// triple whose components may be wildcards. A scope type matches the type
// itself and every type derived from it. Rule variants:
//
//   - Ignore, IgnoreSource, IgnoreWhere: members never assigned or read
//   - MapTo, MapToWhere, MapOnto: data sources for a member, for every
//     member matching a filter, or for the whole target
//   - Factory: a function producing the target, or a simple member value
//   - Converter: a conversion tried before the built-in ones
//   - Derived: a runtime source type mapped to a derived target type
//   - Reverse, NoReverse: mirroring of path-to-path data sources
//
// Data sources and derived pairs can be guarded by a Go function (If) or an
// expression (IfExpr) such as `Source.Age >= 18`.
//
// # Registration
//
// Registry.Register validates rules against the types they name and rejects
// conflicting ones; a failed call registers nothing. RelevantItemsFor returns
// the rules applying to a signature, most specific scope first.
//
// # Rule files
//
//	version: "1"
//	mappings:
//	  - source: store.Order
//	    target: warehouse.Order
//	    intent: create
//	    121:
//	      OrderID: ID
//	      Customer.Name: Customer
//	    fields:
//	      - target: Status
//	        value: pending
//	      - target: [DisplayName, Label]
//	        expr: Source.Customer.Name + " #" + Source.OrderID
//	      - target: Amount
//	        source: Price
//	        transform: CentsToAmount
//	        when: Source.Price > 0
//	    ignore: [Internal]
//	    ignore_source: Secret
//	    derived:
//	      - source: store.RushOrder
//	        target: warehouse.RushOrder
//	    reverse: true
//	transforms:
//	  - name: CentsToAmount
//	    source_type: int
//	    target_type: float64
//
// # Path Syntax
//
// Source paths support:
//   - Simple members: "Name"
//   - Nested members: "Address.Street"
//   - Collections: "Items[]"
//
// Target paths name a direct member of the target.
package mapping
