package model

// ResponseKind identifies the type of a Response.
type ResponseKind uint8

const (
	// ResponseCustom is a response kind supplied by a registration.
	ResponseCustom ResponseKind = iota
	// ResponseBundle groups several sibling responses.
	ResponseBundle
	ResponseWeb
	ResponseImage
	ResponseVideo
	ResponseNews
	ResponseRelatedSearch
	ResponseSpell
	ResponseTranslation
	ResponsePhonebook
)

var responseKindNames = [...]string{
	ResponseCustom:        "Custom",
	ResponseBundle:        "Bundle",
	ResponseWeb:           "Web",
	ResponseImage:         "Image",
	ResponseVideo:         "Video",
	ResponseNews:          "News",
	ResponseRelatedSearch: "RelatedSearch",
	ResponseSpell:         "Spell",
	ResponseTranslation:   "Translation",
	ResponsePhonebook:     "Phonebook",
}

func (k ResponseKind) String() string {
	if int(k) < len(responseKindNames) {
		return responseKindNames[k]
	}
	return "Unknown"
}

// ResultKind identifies the type of a Result.
type ResultKind uint8

const (
	// ResultCustom is a result kind supplied by a registration.
	ResultCustom ResultKind = iota
	// ResultError is an error record reported by the service.
	ResultError
	ResultWeb
	ResultImage
	ResultVideo
	ResultNews
	ResultRelatedSearch
	ResultSpell
	ResultTranslation
	ResultPhonebook
	// ResultThumbnail is a common sub-structure describing one thumbnail.
	ResultThumbnail
	// ResultThumbnails is a common array of thumbnails.
	ResultThumbnails
)

var resultKindNames = [...]string{
	ResultCustom:        "Custom",
	ResultError:         "Error",
	ResultWeb:           "Web",
	ResultImage:         "Image",
	ResultVideo:         "Video",
	ResultNews:          "News",
	ResultRelatedSearch: "RelatedSearch",
	ResultSpell:         "Spell",
	ResultTranslation:   "Translation",
	ResultPhonebook:     "Phonebook",
	ResultThumbnail:     "Thumbnail",
	ResultThumbnails:    "Thumbnails",
}

func (k ResultKind) String() string {
	if int(k) < len(resultKindNames) {
		return resultKindNames[k]
	}
	return "Unknown"
}
