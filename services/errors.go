package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed     = errors.New("validation failed")
	ErrSeasonIDInvalid      = errors.New("season id does not match any known league format")
	ErrSeasonNotFound       = errors.New("season not found")
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrImportNoRoundData    = errors.New("import requires at least one round file or a pairings file")
	ErrImportDateUnknown    = errors.New("tournament date missing and not derivable from file names")
	ErrSeasonNotActive      = errors.New("season is not accepting tournament imports")
	ErrReimportNotRequested = errors.New("tournament already imported; pass allow_reimport to replace it")

	// Ошибки конфликтов
	ErrSeasonConflict     = errors.New("season already exists")
	ErrDuplicateImport    = errors.New("tournament with this identifier already imported")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrStandingsNotFound  = errors.New("standings not found for season")
	ErrPlayerStatsMissing = errors.New("player stats not found")

	// Жизненный цикл сезона
	ErrSeasonInvalidStatus           = errors.New("invalid season status provided")
	ErrSeasonInvalidStatusTransition = errors.New("invalid season status transition")

	// Аутентификация и авторизация
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidCredentials   = errors.New("invalid login or password")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
)
