package transcoder

import (
	"strings"

	"docxref/internal/engine/model"
	"docxref/internal/engine/traits"
)

func init() {
	register(Rules{
		Source:     traits.TagObjC,
		Target:     "swift",
		MemberName: swiftSelectorName,
		TypeRef:    swiftTypeRef,
		DropReturn: func(ret *model.ReturnValue) bool {
			return ret.Type == nil || (!ret.Type.IsClosure() && ret.Type.Name == "Void")
		},
	})
}

var swiftTypes = map[string]string{
	"BOOL":         "Bool",
	"bool":         "Bool",
	"id":           "Any",
	"instancetype": "Self",
	"void":         "Void",
	"NSString":     "String",
	"NSInteger":    "Int",
	"NSUInteger":   "UInt",
	"NSArray":      "Array",
	"NSDictionary": "Dictionary",
	"NSSet":        "Set",
	"NSError":      "Error",
	"NSData":       "Data",
	"NSDate":       "Date",
	"NSURL":        "URL",
	"double":       "Double",
	"float":        "Float",
	"int":          "Int32",
}

var swiftNullable = []string{"nullable", "_Nullable", "__nullable"}

// swiftSelectorName keeps the first part of a selector: `initWithFrame:style:`
// becomes `initWithFrame`.
func swiftSelectorName(name string) string {
	if before, _, found := strings.Cut(name, ":"); found {
		return before
	}
	return name
}

// swiftTypeRef maps Objective-C types to their Swift spelling. Pointers and
// ownership qualifiers disappear; nullability becomes an optional.
func swiftTypeRef(ref *model.TypeRef) {
	switch {
	case ref.Name == "id" && len(ref.Nested) == 1:
		protocol := ref.Nested[0]
		ref.Name, ref.ID, ref.Kind, ref.Nested = protocol.Name, protocol.ID, protocol.Kind, nil
	default:
		if mapped, ok := swiftTypes[ref.Name]; ok {
			ref.Name = mapped
		}
	}

	optional := hasWord(ref.Prefix, swiftNullable) || hasWord(ref.Suffix, swiftNullable)
	ref.Prefix = ""
	ref.Suffix = ""
	if optional {
		ref.Suffix = "?"
	}
}

func hasWord(text string, words []string) bool {
	for _, field := range strings.Fields(text) {
		for _, w := range words {
			if field == w {
				return true
			}
		}
	}
	return false
}
