package prompt

import "fmt"

// Fixed fallback texts used when probe generation itself fails. Keyed by the
// quiz language; anything unknown falls back to English.

func FallbackProbe(lang string) string {
	if lang == "ru" {
		return "Расскажите немного о человеке, которому вы ищете подарок: чем он увлекается, как проводит свободное время?"
	}
	return "Tell me a bit about the person you're shopping for: what do they enjoy, how do they spend their free time?"
}

func FallbackWideQuestion(lang, topic string) string {
	if lang == "ru" {
		return fmt.Sprintf("«%s» — широкая тема. Что именно из этого ближе всего получателю?", topic)
	}
	return fmt.Sprintf("%q is a broad area. What part of it is closest to their heart?", topic)
}

func FallbackExploreQuestion(lang, topic string) string {
	if lang == "ru" {
		return fmt.Sprintf("Расскажите чуть больше про «%s»: что именно нравится получателю?", topic)
	}
	return fmt.Sprintf("Tell me a little more about %q: what exactly do they enjoy about it?", topic)
}
