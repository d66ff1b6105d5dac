// Package i18n translates Issue codes (see the root errors.go Code*
// constants) into human-readable messages, in English and German --
// reflecting where the Spcht Descriptor Engine's lineage traces back to.
package i18n

// Translator retrieves localized messages for Issue codes. data provides
// optional metadata to embed in the message (for example, "field").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "de":
		switch code {
		case "missing_head":
			return "Kopfknoten fehlt oder ist unvollständig"
		case "missing_node_field":
			return "Pflichtfeld im Knoten fehlt"
		case "bad_required", "bad_type", "bad_source", "bad_condition":
			return "ungültiger Wert für dieses Feld"
		case "bad_regex":
			return "regulärer Ausdruck konnte nicht kompiliert werden"
		case "bad_mapping_settings":
			return "unbekannter Schlüssel in mapping_settings"
		case "unresolved_ref":
			return "$ref konnte nicht aufgelöst werden"
		case "bad_insert_arity":
			return "Platzhalteranzahl in insert_into stimmt nicht"
		case "unknown_key":
			return "unbekannter Schlüssel"
		case "mandatory_missing":
			return "Pflichtknoten ohne Wert"
		case "join_length_mismatch":
			return "joined_field und Hauptwert unterschiedlich lang"
		case "insert_arity_mismatch":
			return "Feldreferenz für insert_into ohne Wert"
		case "sub_node_fanout":
			return "sub_nodes auf mehrwertigem Subjekt"
		case "internal":
			return "interner Fehler"
		}
	default: // "en"
		switch code {
		case "missing_head":
			return "head node missing or incomplete"
		case "missing_node_field":
			return "required node field missing"
		case "bad_required", "bad_type", "bad_source", "bad_condition":
			return "invalid value for this field"
		case "bad_regex":
			return "regular expression failed to compile"
		case "bad_mapping_settings":
			return "unknown key in mapping_settings"
		case "unresolved_ref":
			return "$ref could not be resolved"
		case "bad_insert_arity":
			return "insert_into placeholder count mismatch"
		case "unknown_key":
			return "unknown key"
		case "mandatory_missing":
			return "mandatory node produced no value"
		case "join_length_mismatch":
			return "joined_field length does not match the main value"
		case "insert_arity_mismatch":
			return "insert_into field reference produced no value"
		case "sub_node_fanout":
			return "sub_nodes run against a multi-valued subject"
		case "internal":
			return "internal error"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"de").
func SetLanguage(lang string) {
	if lang != "de" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
