package tools

import "errors"

var (
	// ErrUnknownTool — модель запросила инструмент, которого нет в реестре.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrInvalidArgument — аргументы не прошли проверку по схеме или
	// отклонены самим инструментом.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDuplicateTool — инструмент с таким именем уже зарегистрирован.
	ErrDuplicateTool = errors.New("duplicate tool")
)
