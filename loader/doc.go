// Package loader provides the Loader implementations that resolve unit
// configuration references.
//
// Four document formats are built in, each a Codec registered under its
// extension: "ser" (gob), "xml", "json" and "yaml". FileLoader reads them
// from the file system selected by the context-loader parameter; KVLoader
// reads them from a NATS key-value bucket; CachingLoader memoizes either.
//
//	roots := loader.NewRoots(os.DirFS("/etc/semunits"))
//	_ = roots.Add("tenant-a", os.DirFS("/srv/tenant-a"))
//	if err := loader.RegisterDefaults(reg.Loaders(), loader.Options{Roots: roots}); err != nil {
//	    return err
//	}
//
// A config {Source: {Loader: "json", Target: "workers/ingest"}} with
// context-loader "tenant-a" is then read from /srv/tenant-a/workers/ingest.json.
// The file loaders also decode resources for Context.CreateFromResource.
package loader
