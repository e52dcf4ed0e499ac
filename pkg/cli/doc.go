// Package cli holds the pieces shared by the critique command: the
// profile configuration file, result output in YAML/JSON/raw form and the
// terminal styles used to print labels.
//
// Configuration lives in ~/.critique/config.yaml and holds named profiles,
// kubectl-style, one of which is current:
//
//	current_profile: prod
//	profiles:
//	  prod:
//	    model: s3://models/emotion/v3.msgpack
//	    s3:
//	      region: eu-west-1
//	  local:
//	    model: ./emotion.json
//	    features:
//	      sample_rate: 22050
package cli
