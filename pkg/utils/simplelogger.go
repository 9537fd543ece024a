// Package utils предоставляет простой keyval логгер для сервера и CLI утилит.
//
// По умолчанию пишет в stderr. Если задан log_file, строки дописываются в файл.
// Thread-safe через sync.Mutex.
package utils

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

var (
	logOut      io.Writer = os.Stderr
	logFile     *os.File
	logMutex    sync.Mutex
	debugOn     bool
	initialized bool
)

// InitLogger настраивает вывод логгера.
//
// path == "" — лог в stderr. Иначе файл открывается в режиме append
// (создаётся при отсутствии). debug включает строки уровня DEBUG.
// Повторный вызов ничего не делает, пока не вызван Close.
func InitLogger(path string, debug bool) error {
	logMutex.Lock()
	defer logMutex.Unlock()

	if initialized {
		return nil
	}

	debugOn = debug
	target := "stderr"

	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		logOut = f
		target = path
	}

	initialized = true
	// Пишем напрямую без Info чтобы избежать deadlock (мьютекс уже захвачен)
	writeLine(format("INFO", "Logger initialized", "output", target, "debug", debug))

	return nil
}

// SetOutput перенаправляет вывод логгера (используется в тестах).
func SetOutput(w io.Writer) {
	logMutex.Lock()
	defer logMutex.Unlock()
	logOut = w
}

// Info - информационное сообщение.
func Info(msg string, keyvals ...any) {
	log("INFO", msg, keyvals...)
}

// Error - сообщение об ошибке.
func Error(msg string, keyvals ...any) {
	log("ERROR", msg, keyvals...)
}

// Debug - отладочное сообщение. Пишется только при debug=true.
func Debug(msg string, keyvals ...any) {
	logMutex.Lock()
	on := debugOn
	logMutex.Unlock()
	if !on {
		return
	}
	log("DEBUG", msg, keyvals...)
}

// Warn - предупреждение.
func Warn(msg string, keyvals ...any) {
	log("WARN", msg, keyvals...)
}

// log - внутренняя функция записи в лог.
func log(level, msg string, keyvals ...any) {
	line := format(level, msg, keyvals...)

	logMutex.Lock()
	defer logMutex.Unlock()
	writeLine(line)
}

// format собирает строку вида:
// [YYYY-MM-DD HH:MM:SS] LEVEL: message key1=value1 key2=value2
//
// Ключ без пары значения отбрасывается. Значения с пробелами, '=',
// кавычками или управляющими символами пишутся в кавычках, так что
// пользовательский текст не может подделать строку или пару key=value.
func format(level, msg string, keyvals ...any) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	line := fmt.Sprintf("[%s] %s: %s", timestamp, level, msg)

	for i := 0; i+1 < len(keyvals); i += 2 {
		line += fmt.Sprintf(" %v=%s", keyvals[i], formatValue(keyvals[i+1]))
	}

	return line + "\n"
}

func formatValue(v any) string {
	s := fmt.Sprintf("%v", v)
	if s == "" {
		return `""`
	}
	if strings.IndexFunc(s, needsQuote) >= 0 {
		return strconv.Quote(s)
	}
	return s
}

func needsQuote(r rune) bool {
	return r == '=' || r == '"' || unicode.IsSpace(r) || !unicode.IsPrint(r)
}

// writeLine пишет готовую строку. Вызывается под logMutex.
func writeLine(line string) {
	if logOut == nil {
		return
	}

	if _, err := io.WriteString(logOut, line); err != nil {
		// Fallback: если файл недоступен, пишем в stderr
		fmt.Fprintf(os.Stderr, "%s", line)
		fmt.Fprintf(os.Stderr, "[LOGGER ERROR: WriteString failed: %v]\n", err)
		return
	}

	if logFile != nil && logOut == io.Writer(logFile) {
		if err := logFile.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Sync failed: %v]\n", err)
		}
	}
}

// Close закрывает лог-файл и возвращает вывод в stderr.
//
// Вызывается через defer в main().
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile != nil {
		if err := logFile.Close(); err != nil {
			// Логгер уже закрывается, только stderr
			fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Close failed: %v]\n", err)
		}
		logFile = nil
	}
	logOut = os.Stderr
	initialized = false
}
