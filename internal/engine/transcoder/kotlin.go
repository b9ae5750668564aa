package transcoder

import (
	"docxref/internal/engine/model"
	"docxref/internal/engine/traits"
)

func init() {
	register(Rules{
		Source:  traits.TagJava,
		Target:  "kotlin",
		TypeRef: kotlinTypeRef,
	})
}

// kotlinTypes maps primitives and their boxed classes onto Kotlin types.
var kotlinTypes = map[string]string{
	"byte":      "Byte",
	"Byte":      "Byte",
	"short":     "Short",
	"Short":     "Short",
	"int":       "Int",
	"Integer":   "Int",
	"long":      "Long",
	"Long":      "Long",
	"float":     "Float",
	"Float":     "Float",
	"double":    "Double",
	"Double":    "Double",
	"boolean":   "Boolean",
	"Boolean":   "Boolean",
	"char":      "Char",
	"Character": "Char",
}

func kotlinTypeRef(ref *model.TypeRef) {
	if mapped, ok := kotlinTypes[ref.Name]; ok {
		ref.Name = mapped
	}
}
