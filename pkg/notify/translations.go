package notify

import (
	"fmt"
	"strings"

	i18n "github.com/goliatone/go-i18n"
)

const defaultEmoji = "📋"

var emojis = map[string]map[string]string{
	EntityApplication: {ActionCreated: "📱", ActionUpdated: "🔄", ActionDeleted: "🗑️"},
	EntityIncident:    {ActionCreated: "🚨", ActionUpdated: "📝", ActionResolved: "✅", ActionDeleted: "✅"},
	EntityMaintenance: {ActionCreated: "🔧", ActionUpdated: "🔧", ActionDeleted: "🗑️"},
	EntityLog:         {ActionCreated: "📝"},
}

// Emoji returns the subject prefix for an entity/action pair.
func Emoji(entityType, action string) string {
	if byAction, ok := emojis[entityType]; ok {
		if e, ok := byAction[action]; ok {
			return e
		}
	}
	return defaultEmoji
}

type spanishNoun struct {
	word     string
	feminine bool
}

var (
	englishEntities = map[string]string{
		EntityApplication: "Application",
		EntityIncident:    "Incident",
		EntityMaintenance: "Maintenance",
		EntityLog:         "Log",
	}
	spanishEntities = map[string]spanishNoun{
		EntityApplication: {"Aplicación", true},
		EntityIncident:    {"Incidente", false},
		EntityMaintenance: {"Mantenimiento", false},
		EntityLog:         {"Registro", false},
	}
	spanishActions = map[string][2]string{
		ActionCreated:  {"creado", "creada"},
		ActionUpdated:  {"actualizado", "actualizada"},
		ActionDeleted:  {"eliminado", "eliminada"},
		ActionResolved: {"resuelto", "resuelta"},
	}
	actions = []string{ActionCreated, ActionUpdated, ActionDeleted, ActionResolved}
)

// Translations returns the en and es catalogs used for email copy.
// Keys: entity.<type>, action.<action>, event.<type>.<action>,
// title.<type>.<action>, plus subject and body labels.
func Translations() i18n.Translations {
	en := map[string]string{
		"email.subject":       "%s %s in %s",
		"email.label.org":     "Organization",
		"email.label.actor":   "Changed by",
		"email.label.status":  "Status",
		"email.label.app":     "Application",
		"email.label.window":  "Window",
		"email.footer":        "You are receiving this email because you are a member of %s on %s.",
		"email.actor.unknown": "someone",
	}
	es := map[string]string{
		"email.subject":       "%s %s en %s",
		"email.label.org":     "Organización",
		"email.label.actor":   "Modificado por",
		"email.label.status":  "Estado",
		"email.label.app":     "Aplicación",
		"email.label.window":  "Ventana",
		"email.footer":        "Recibes este correo porque eres miembro de %s en %s.",
		"email.actor.unknown": "alguien",
	}

	for entity, name := range englishEntities {
		en["entity."+entity] = name
		for _, action := range actions {
			en[fmt.Sprintf("event.%s.%s", entity, action)] = name + " " + action
			en[fmt.Sprintf("title.%s.%s", entity, action)] = name + " was " + action
		}
	}
	for _, action := range actions {
		en["action."+action] = action
		es["action."+action] = spanishActions[action][0]
	}
	for entity, noun := range spanishEntities {
		es["entity."+entity] = noun.word
		for _, action := range actions {
			participle := spanishActions[action][0]
			if noun.feminine {
				participle = spanishActions[action][1]
			}
			es[fmt.Sprintf("event.%s.%s", entity, action)] = noun.word + " " + participle
			if noun.feminine {
				es[fmt.Sprintf("title.%s.%s", entity, action)] = "La " + strings.ToLower(noun.word) + " fue " + participle
			} else {
				es[fmt.Sprintf("title.%s.%s", entity, action)] = "El " + strings.ToLower(noun.word) + " fue " + participle
			}
		}
	}

	return i18n.Translations{
		"en": newCatalog("en", en),
		"es": newCatalog("es", es),
	}
}

func newCatalog(locale string, entries map[string]string) *i18n.TranslationCatalog {
	catalog := &i18n.TranslationCatalog{
		Locale:   i18n.Locale{Code: locale},
		Messages: make(map[string]i18n.Message, len(entries)),
	}
	for key, template := range entries {
		msg := i18n.Message{}
		msg.SetContent(template)
		catalog.Messages[key] = msg
	}
	return catalog
}

// NewTranslator builds a translator over Translations with the given default locale.
func NewTranslator(defaultLocale string) (i18n.Translator, error) {
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return i18n.NewSimpleTranslator(i18n.NewStaticStore(Translations()), i18n.WithTranslatorDefaultLocale(defaultLocale))
}
