// Package files discovers scenario result archives in the results directory.
//
// A scenario is addressed either by its file name ("baseline.gdx") or by the
// file name without extension ("baseline"). Only extensions registered with
// the Discovery are listed, so the set follows the archive readers in use.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths.ResultsDir, registry.Extensions()...)
//
//	archives, err := discovery.FindArchives()
//	baseline, err := discovery.Lookup("baseline")
package files
