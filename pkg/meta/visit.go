package meta

// WalkStrings visits every string leaf reachable from v in document order.
// Map keys are skipped: the value model treats them as immutable, so nothing
// downstream may depend on their contents being visited.
func WalkStrings(v PropertyValue, fn func(s string)) {
	switch val := v.(type) {
	case *String:
		fn(val.Value)
	case *Container:
		for _, item := range val.Items {
			WalkStrings(item, fn)
		}
	case *UnorderedContainer:
		for _, item := range val.Items {
			WalkStrings(item, fn)
		}
	case *Struct:
		for i := range val.Properties {
			WalkStrings(val.Properties[i].Value, fn)
		}
	case *Embedded:
		for i := range val.Properties {
			WalkStrings(val.Properties[i].Value, fn)
		}
	case *Optional:
		if val.Value != nil {
			WalkStrings(val.Value, fn)
		}
	case *Map:
		for i := range val.Entries {
			WalkStrings(val.Entries[i].Value, fn)
		}
	case *U32, *F32, *Bool:
		// leaves with no strings
	}
}

// RewriteStrings visits every mutable string leaf reachable from v and
// replaces it when fn reports a change. Returns the number of replacements.
// Map keys are never rewritten.
func RewriteStrings(v PropertyValue, fn func(s string) (string, bool)) int {
	count := 0
	switch val := v.(type) {
	case *String:
		if next, changed := fn(val.Value); changed {
			val.Value = next
			count++
		}
	case *Container:
		for _, item := range val.Items {
			count += RewriteStrings(item, fn)
		}
	case *UnorderedContainer:
		for _, item := range val.Items {
			count += RewriteStrings(item, fn)
		}
	case *Struct:
		for i := range val.Properties {
			count += RewriteStrings(val.Properties[i].Value, fn)
		}
	case *Embedded:
		for i := range val.Properties {
			count += RewriteStrings(val.Properties[i].Value, fn)
		}
	case *Optional:
		if val.Value != nil {
			count += RewriteStrings(val.Value, fn)
		}
	case *Map:
		for i := range val.Entries {
			count += RewriteStrings(val.Entries[i].Value, fn)
		}
	case *U32, *F32, *Bool:
	}
	return count
}

// WalkDocumentStrings applies WalkStrings to every property of every object.
func WalkDocumentStrings(doc *Document, fn func(s string)) {
	for i := range doc.Objects {
		for j := range doc.Objects[i].Properties {
			WalkStrings(doc.Objects[i].Properties[j].Value, fn)
		}
	}
}

// RewriteDocumentStrings applies RewriteStrings to every property of every
// object and returns the total replacement count.
func RewriteDocumentStrings(doc *Document, fn func(s string) (string, bool)) int {
	count := 0
	for i := range doc.Objects {
		for j := range doc.Objects[i].Properties {
			count += RewriteStrings(doc.Objects[i].Properties[j].Value, fn)
		}
	}
	return count
}
