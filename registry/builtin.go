package registry

import "github.com/hupe1980/searchtree/model"

var thumbnailFields = map[string]string{
	"Width":    "int",
	"Height":   "int",
	"FileSize": "int",
	"RunTime":  "int",
}

var builtinResults = []ResultSchema{
	{Name: "WebResult", kind: model.ResultWeb},
	{
		Name:    "ImageResult",
		Fields:  map[string]string{"Width": "int", "Height": "int", "FileSize": "int"},
		Accepts: []string{"Thumbnail", "Thumbnails"},
		kind:    model.ResultImage,
	},
	{
		Name:    "VideoResult",
		Fields:  map[string]string{"RunTime": "int"},
		Accepts: []string{"Thumbnail", "Thumbnails"},
		kind:    model.ResultVideo,
	},
	{
		Name:    "NewsResult",
		Fields:  map[string]string{"BreakingNews": "bool"},
		Accepts: []string{"Thumbnail"},
		kind:    model.ResultNews,
	},
	{Name: "RelatedSearchResult", kind: model.ResultRelatedSearch},
	{Name: "SpellResult", kind: model.ResultSpell},
	{Name: "TranslationResult", kind: model.ResultTranslation},
	{
		Name: "PhonebookResult",
		Fields: map[string]string{
			"Latitude":    "float",
			"Longitude":   "float",
			"UserRating":  "float",
			"ReviewCount": "int",
		},
		kind: model.ResultPhonebook,
	},
	{Name: "Thumbnail", Common: true, Fields: thumbnailFields, kind: model.ResultThumbnail},
	{Name: "Thumbnails", Common: true, Array: true, Accepts: []string{"Thumbnail"}, kind: model.ResultThumbnails},
	{Name: ErrorElement, Fields: map[string]string{"Code": "int"}, kind: model.ResultError},
}

var pagingFields = map[string]string{"Total": "int", "Offset": "int"}

var builtinResponses = []ResponseSchema{
	{Name: "Web", Fields: pagingFields, kind: model.ResponseWeb},
	{Name: "Image", Fields: pagingFields, Accepts: []string{"Thumbnail", "Thumbnails"}, kind: model.ResponseImage},
	{Name: "Video", Fields: pagingFields, Accepts: []string{"Thumbnail", "Thumbnails"}, kind: model.ResponseVideo},
	{Name: "News", Fields: pagingFields, Accepts: []string{"Thumbnail", "Thumbnails"}, kind: model.ResponseNews},
	{Name: "RelatedSearch", Fields: pagingFields, kind: model.ResponseRelatedSearch},
	{Name: "Spell", Fields: pagingFields, kind: model.ResponseSpell},
	{Name: "Translation", Fields: pagingFields, kind: model.ResponseTranslation},
	{Name: "Phonebook", Fields: pagingFields, kind: model.ResponsePhonebook},
	{Name: BundleElement, kind: model.ResponseBundle},
}
