package constant

// Command tokens. Matching is exact and case-sensitive.
const (
	CommandPrefix = "!"

	CommandQuran  = "!Quran"
	CommandStop   = "!stop"
	CommandHelp   = "!help"
	CommandQuit   = "!quit"
	CommandJoin   = "!join"
	CommandPart   = "!part"
	CommandCounts = "!counts"
	CommandMsg    = "!msg"
)

// User-facing notices.
const (
	MsgNoResults       = "Sorry! No relevant Ayat found for your query. Please try different phrase or words for better results."
	MsgTimeout         = "Sorry! Request timed out, please try again."
	MsgQueued          = "Your query has been queued. You will receive a response shortly."
	MsgCompletion      = "The possible result(s) for the query has been processed. It is always the best approach to cross-check from other authentic sources too."
	MsgQueryExists     = "You already have an active query."
	MsgFloodProtection = "To avoid flooding, responses are sent in parts. Please be patient."
	MsgShuttingDown    = "Stay blessed!"
	MsgWrongCommand    = "Invalid command. Please use one of the available commands."
	MsgStopped         = "The remaining result has been stopped."
	MsgNothingToStop   = "There is no active result to stop."
	MsgJoinSuccess     = "Joined %s."
	MsgJoinFailure     = "Cannot join %s : %v."
	MsgJoinEmpty       = "Please mention channel name with !join"
	MsgPartSuccess     = "Left %s."
	MsgPartFailure     = "Cannot leave %s : %v."
	MsgPartEmpty       = "Please mention channel name with !part"
	MsgMsgEmpty        = "Please mention nickname or channel and message after !msg"
	MsgCountsFailure   = "Cannot fetch counts %v"
	MsgChannelInvite   = "You can also join #Margalla to lead positive discussions!"
	MsgQuitReason      = "Shutting down and quiting IRC."
)

// HelpPrivate is sent in private conversations and as the unsolicited greeting.
var HelpPrivate = []string{
	"Assalam-o-Alaikum! I am here to provide very easy and authentic Qur'an Search. Just type !Quran <any Surah name, Ayat content, topic, keywords, or question> to find relevant Surah and Ayaat in 37 languages.",
	"To mention your preferred language e.g. !Quran Surah Al-Fateha in Urdu. You can also use !stop to stop the result. Have your blessed time on IRC :)",
}

// HelpChannel is sent when !help is used in a channel.
var HelpChannel = []string{
	"I am here to provide very easy and authentic Qur'an Search. You can ask about the Qur'anic Ayaat (Verses) based on topic, keywords, Surah name, Ayat content and questions.",
	"- You can just type !Quran <your query> and I will search for Surah and Ayat relevant to your query.",
	"- You can stop me if result is very long or not relevant by entering !stop.",
	"- To display this help message again, enter !help.",
	"I can translate Qur'an in 36 languages. Just mention your preferred language e.g. !Quran Surah Al-Fateha in Urdu. Have your blessed time on IRC :)",
}

// QuranSystemPrompt fixes the shape of the AI answer to
// "Language: code:DIR; s:a, s:a-b, ...".
const QuranSystemPrompt = "Return only Surah and Ayat number(s) of the Ayat(s) relevant to the query in the below format: " +
	"Language: ISO code:Unicode Direction; Surah Number: Ayat Number, Surah Number: Ayat Number, Surah Number: Ayat Number. " +
	"Example: Language: ur:RTL; 108:10, 8:12, 10:20. " +
	"Return all Ayats of a Surah in sequence if the query specifies so. " +
	"Result must contain unique Ayats of a Surah and do not repeat Ayat of the same Surah in a result. " +
	"Must return accurate results and ensure moderation for the criticality of religious information. " +
	"Query and result mapping shall start with Surah name, Ayat content, Ayat meaning and then Tafseer to get a complete context. " +
	"Don't include Ayat content and other information in the response. " +
	"Mention the ISO language code and Right-to-Left flag e.g. RTL or LTR of query used by the user e.g. Language: en:LTR."

// DefaultTranslationTable is used for unknown language codes.
const DefaultTranslationTable = "english"

// LanguageTables maps ISO codes to translation table names.
var LanguageTables = map[string]string{
	"sq": "albanian",
	"az": "azeri",
	"bn": "bangali",
	"bs": "bosnian",
	"bg": "bulgarian",
	"zh": "chinese",
	"cs": "czech",
	"dv": "divehi",
	"nl": "dutch",
	"en": "english",
	"de": "german",
	"hi": "hindi",
	"id": "indonesian",
	"it": "italian",
	"ja": "japanese",
	"ko": "korean",
	"ku": "kurdish",
	"ms": "malay",
	"ml": "malayalam",
	"no": "norwegian",
	"pl": "polish",
	"pt": "portuguese",
	"ro": "romanian",
	"ru": "russian",
	"so": "somali",
	"es": "spanish",
	"si": "sinhala",
	"sw": "swahili",
	"sv": "swedish",
	"tg": "tajik",
	"ta": "tamil",
	"tt": "tatar",
	"th": "thai",
	"tr": "turkish",
	"ur": "urdu",
	"ug": "uyghur",
	"uz": "uzbek",
}

// TranslationTable resolves a language code, falling back to the default table.
func TranslationTable(language string) string {
	if table, ok := LanguageTables[language]; ok {
		return table
	}
	return DefaultTranslationTable
}
