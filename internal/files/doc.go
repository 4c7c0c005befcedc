// Package files discovers input spreadsheets for batch runs.
//
//	discovery := files.NewDiscovery(baseDir)
//	inputs, err := discovery.FindSpreadsheets("incoming")
//	for _, f := range inputs {
//	    out := files.SummaryPath("summaries", f.Path) // summaries/<name>.summary.json
//	}
package files
