// Package loader reads body-model descriptions and session files.
//
// A model description is YAML (JSON works too) naming the model, the axes
// every region must declare, and the region tree:
//
//	name: hand
//	required_axes: [palmar_dorsal, ulnar_radial]
//	root:
//	  name: hand
//	  modifiers:
//	    palmar_dorsal: [palmar, dorsal]
//	    ulnar_radial: [ulnar, radial]
//	  subregions:
//	    - name: finger
//	      options: [thumb, index, middle, ring, little]
//
// The same description can be written in TOML (files ending in .toml), with
// subregions as arrays of tables.
//
// A subregion that omits an axis inherits the parent's values for it. An axis
// listed with no values is kept empty.
//
// Descriptions may declare "format: 1.0"; a different major version is
// rejected. Open also accepts "builtin:<name>" for the models embedded in
// this package (see BuiltinNames).
//
// A session file lists model files to register under keys, the addresses to
// save in each, and optionally a state file to restore:
//
//	state: registry.json
//	models:
//	  - key: left
//	    file: hand.yaml
//	    areas: ["hand, finger | palmar"]
package loader
