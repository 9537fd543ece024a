// Package utils предоставляет вспомогательные функции для обработки данных.
//
// Включает утилиты для очистки аргументов tool calls от markdown-обёртки
// и сокращения длинных строк перед записью в лог.
package utils

import (
	"strings"
	"unicode/utf8"
)

// CleanJsonBlock удаляет markdown-обёртку вокруг JSON.
//
// Некоторые модели присылают аргументы tool call обёрнутыми в кодовый блок:
//
//	```json
//	{"query": "go tutorials"}
//	```
//
// Примеры:
//
//	```json {"a": 1} ``` → {"a": 1}
//	``` {"a": 1} ``` → {"a": 1}
func CleanJsonBlock(s string) string {
	s = strings.TrimSpace(s)

	// Удаляем ```json в начале
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```Json")

	// Удаляем ``` в начале
	s = strings.TrimPrefix(s, "```")

	// Удаляем ``` в конце
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}

// Truncate обрезает строку до max рун, добавляя "..." при обрезке.
//
// Используется для превью запросов и ответов в логах.
// max <= 0 возвращает строку без изменений.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "..."
}
