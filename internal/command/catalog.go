package command

import (
	"fmt"
	"time"
)

// Catalog holds every user-facing string for one language.
type Catalog struct {
	Language string

	Start      string
	Help       string
	StockUsage string
	Health     string
	Echo       string // %s is the user's text

	WeatherTitle   string
	Temperature    string // %s is °C
	Wind           string // %s is km/h
	Day            string
	Night          string
	WeatherCodes   map[int]string
	UnknownWeather string
	CityNotFound   string // %s is the city as typed
	WeatherNoData  string
	WeatherFailed  string

	RatesTitle  string
	RatesNoData string
	RatesFailed string

	StockTitle     string
	Price          string // %s is the price
	Change         string // glyph, change, percent
	StockNoPrice   string // %s is the ticker
	StockNoMarket  string // %s is the ticker
	StockNotFound  string // %s is the ticker
	StockFailed    string // %s is the ticker
	DataAt         string // %s is HH:MM:SS
	FormatDateLine func(t time.Time) string
}

const separator = "────────────────"

var russianWeekdays = [7]string{"воскресенье", "понедельник", "вторник", "среда", "четверг", "пятница", "суббота"}

var russianMonths = [12]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var ru = &Catalog{
	Language: "ru",
	Start: "Привет! Я твой бот! 🚀\n" +
		"Доступные команды:\n" +
		"/weather [город] - погода\n" +
		"/exchange - курс валют\n" +
		"/stock [тикер] - акция MOEX\n" +
		"/help - помощь",
	Help: "Помощь:\n" +
		"/weather [город] - погода в указанном городе\n" +
		"/exchange - курс валют ЦБ РФ\n" +
		"/stock [тикер] - акция MOEX\n" +
		"Примеры:\n" +
		"/weather Лондон\n" +
		"/stock SBER\n" +
		"/stock GAZP",
	StockUsage: "📈 Использование: /stock [тикер]\n" +
		"Примеры:\n" +
		"/stock SBER\n" +
		"/stock GAZP\n" +
		"/stock LKOH\n" +
		"/stock YNDX",
	Health: "🚀 Бот работает! Используйте /start в Telegram",
	Echo:   `Вы сказали: "%s"`,

	WeatherTitle: "🌤️ ПОГОДА СЕЙЧАС",
	Temperature:  "🌡️ Температура: %s°C",
	Wind:         "💨 Ветер: %s км/ч",
	Day:          "🌞 Сейчас день",
	Night:        "🌙 Сейчас ночь",
	WeatherCodes: map[int]string{
		0: "☀️ Ясно", 1: "🌤️ Преимущественно ясно", 2: "⛅️ Переменная облачность",
		3: "☁️ Пасмурно", 45: "🌫️ Туман", 48: "🌫️ Густой туман",
		51: "🌧️ Легкая морось", 53: "🌧️ Умеренная морось", 55: "🌧️ Сильная морось",
		61: "🌧️ Небольшой дождь", 63: "🌧️ Умеренный дождь", 65: "🌧️ Сильный дождь",
		80: "🌦️ Ливень", 95: "⛈️ Гроза",
	},
	UnknownWeather: "❓ Неизвестно",
	CityNotFound:   "❌ Город '%s' не найден",
	WeatherNoData:  "❌ Не удалось получить данные о погоде",
	WeatherFailed:  "❌ Ошибка при получении погоды",

	RatesTitle:  "💱 КУРС ВАЛЮТ ЦБ РФ",
	RatesNoData: "❌ Не удалось получить курсы валют",
	RatesFailed: "❌ Ошибка при получении курсов валют",

	StockTitle:    "📈 АКЦИЯ MOEX",
	Price:         "💰 Цена: %s ₽",
	Change:        "%s Изменение: %s (%s%%)",
	StockNoPrice:  "❌ Для акции %s нет данных о цене",
	StockNoMarket: "❌ Нет рыночных данных для акции %s",
	StockNotFound: "❌ Акция с тикером '%s' не найдена",
	StockFailed:   "❌ Ошибка при получении данных акции %s",
	DataAt:        "🕐 Данные на: %s",
	FormatDateLine: func(t time.Time) string {
		return fmt.Sprintf("%s, %02d %s %d г.", russianWeekdays[t.Weekday()], t.Day(), russianMonths[t.Month()-1], t.Year())
	},
}

var en = &Catalog{
	Language: "en",
	Start: "Hi! I'm your bot! 🚀\n" +
		"Available commands:\n" +
		"/weather [city] - weather\n" +
		"/exchange - exchange rates\n" +
		"/stock [ticker] - MOEX share\n" +
		"/help - help",
	Help: "Help:\n" +
		"/weather [city] - weather in the given city\n" +
		"/exchange - Bank of Russia exchange rates\n" +
		"/stock [ticker] - MOEX share\n" +
		"Examples:\n" +
		"/weather London\n" +
		"/stock SBER\n" +
		"/stock GAZP",
	StockUsage: "📈 Usage: /stock [ticker]\n" +
		"Examples:\n" +
		"/stock SBER\n" +
		"/stock GAZP\n" +
		"/stock LKOH\n" +
		"/stock YNDX",
	Health: "🚀 Bot is running! Use /start in Telegram",
	Echo:   `You said: "%s"`,

	WeatherTitle: "🌤️ WEATHER NOW",
	Temperature:  "🌡️ Temperature: %s°C",
	Wind:         "💨 Wind: %s km/h",
	Day:          "🌞 It's daytime",
	Night:        "🌙 It's night",
	WeatherCodes: map[int]string{
		0: "☀️ Clear", 1: "🌤️ Mainly clear", 2: "⛅️ Partly cloudy",
		3: "☁️ Overcast", 45: "🌫️ Fog", 48: "🌫️ Dense fog",
		51: "🌧️ Light drizzle", 53: "🌧️ Moderate drizzle", 55: "🌧️ Heavy drizzle",
		61: "🌧️ Light rain", 63: "🌧️ Moderate rain", 65: "🌧️ Heavy rain",
		80: "🌦️ Showers", 95: "⛈️ Thunderstorm",
	},
	UnknownWeather: "❓ Unknown",
	CityNotFound:   "❌ City '%s' not found",
	WeatherNoData:  "❌ Could not get weather data",
	WeatherFailed:  "❌ Error while fetching the weather",

	RatesTitle:  "💱 BANK OF RUSSIA EXCHANGE RATES",
	RatesNoData: "❌ Could not get exchange rates",
	RatesFailed: "❌ Error while fetching exchange rates",

	StockTitle:    "📈 MOEX SHARE",
	Price:         "💰 Price: %s ₽",
	Change:        "%s Change: %s (%s%%)",
	StockNoPrice:  "❌ No price data for %s",
	StockNoMarket: "❌ No market data for %s",
	StockNotFound: "❌ Share with ticker '%s' not found",
	StockFailed:   "❌ Error while fetching share data for %s",
	DataAt:        "🕐 Data as of: %s",
	FormatDateLine: func(t time.Time) string {
		return t.Format("Monday, 02 January 2006")
	},
}

// Languages lists the supported catalog codes.
var Languages = []string{"en", "ru"}

// CatalogFor returns the catalog for lang, falling back to English.
func CatalogFor(lang string) *Catalog {
	if lang == "ru" {
		return ru
	}
	return en
}
