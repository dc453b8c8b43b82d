// Package searchtree parses the streamed XML replies of a search service into
// trees of typed responses and results.
//
// # Quick Start
//
//	p := searchtree.New(searchtree.WithTransparentElements("feed"))
//	resp, err := p.Parse(ctx, body)
//	if err != nil {
//	    return err // wraps searchtree.ErrParse; nothing to free
//	}
//	defer resp.Free()
//
//	q, _ := resp.Query()
//	for _, r := range resp.Results() {
//	    title, _ := r.FieldString("Title")
//	    fmt.Println(q, r.Name(), title)
//	}
//
// # Ownership
//
// Every response owns an arena. Results, their fields and nested results live
// in it, and one Free releases the whole tree. A failed parse frees whatever
// it built before returning, so callers never see a partial tree.
//
// # Custom Kinds
//
// Element names are resolved through a registry.Registry. Custom kinds are
// registered with callbacks or as YAML registration data:
//
//	p.RegisterResult(ctx, "RecipeResult", false, false, createRecipe, nil)
//
//	cfg, _ := searchtree.LoadConfigFile("searchtree.yaml")
//	p, _ := searchtree.NewFromConfig(cfg)
//
// # Resources
//
// A resource.Controller shared between parsers bounds arena memory, the
// number of parses running at once and the read throughput of reply bodies.
package searchtree
