package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrStudentAccessOnly ErrCode = "STUDENT_ACCESS_ONLY"
	ErrStaffAccessOnly   ErrCode = "STAFF_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound         ErrCode = "NOT_FOUND"
	ErrConflict         ErrCode = "CONFLICT"
	ErrDependencyExists ErrCode = "DEPENDENCY_EXISTS"
	ErrActionForbidden  ErrCode = "ACTION_FORBIDDEN"

	// ─── Activity-specific ─────────────────────────────────────────────
	ErrActivityNotAvailable ErrCode = "ACTIVITY_NOT_AVAILABLE"
	ErrActivityNotPublished ErrCode = "ACTIVITY_NOT_PUBLISHED"
	ErrActivityNotDraft     ErrCode = "ACTIVITY_NOT_DRAFT"
	ErrNotActivityAuthor    ErrCode = "NOT_ACTIVITY_AUTHOR"
	ErrNoQuestions          ErrCode = "NO_QUESTIONS"
	ErrInvalidQuestion      ErrCode = "INVALID_QUESTION"

	// ─── Session-specific ──────────────────────────────────────────────
	ErrSessionNotFound       ErrCode = "SESSION_NOT_FOUND"
	ErrSessionAlreadyRunning ErrCode = "SESSION_ALREADY_RUNNING"
	ErrSessionCompleted      ErrCode = "SESSION_COMPLETED"
	ErrAnswerRequired        ErrCode = "ANSWER_REQUIRED"
	ErrResultNotReady        ErrCode = "RESULT_NOT_READY"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Código o contraseña incorrectos."
	case ErrSessionActive:
		return "Ya has iniciado sesión en otro dispositivo."
	case ErrSessionInvalidated:
		return "Tu sesión ha expirado. Inicia sesión de nuevo."
	case ErrTokenRequired:
		return "Se requiere un token de autenticación."
	case ErrTokenInvalid:
		return "El token de autenticación no es válido."
	case ErrTokenExpired:
		return "El token de autenticación ha caducado."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "No tienes permiso para acceder a este recurso."
	case ErrStudentAccessOnly:
		return "Este recurso está reservado a estudiantes."
	case ErrStaffAccessOnly:
		return "Este recurso está reservado al personal docente."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "La validación ha fallado. Revisa los datos introducidos."
	case ErrInvalidID:
		return "El formato del identificador no es válido."
	case ErrInvalidPayload:
		return "El cuerpo de la petición no es válido."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Recurso no encontrado."
	case ErrConflict:
		return "El recurso ya existe."
	case ErrDependencyExists:
		return "No se puede eliminar porque otros datos dependen de él."
	case ErrActionForbidden:
		return "Esta acción no está permitida."

	// ─── Activity-specific ─────────────────────────────────────────────
	case ErrActivityNotAvailable:
		return "Esta actividad no está disponible en este momento."
	case ErrActivityNotPublished:
		return "Esta actividad aún no ha sido publicada."
	case ErrActivityNotDraft:
		return "Esta actividad no está en estado BORRADOR."
	case ErrNotActivityAuthor:
		return "No eres el autor de esta actividad."
	case ErrNoQuestions:
		return "Esta actividad no tiene preguntas."
	case ErrInvalidQuestion:
		return "La pregunta no está bien formada."

	// ─── Session-specific ──────────────────────────────────────────────
	case ErrSessionNotFound:
		return "No tienes ninguna sesión en curso para esta actividad."
	case ErrSessionAlreadyRunning:
		return "Ya tienes una actividad en curso. Termínala antes de empezar otra."
	case ErrSessionCompleted:
		return "Esta sesión ya ha terminado."
	case ErrAnswerRequired:
		return "Responde la pregunta actual antes de continuar."
	case ErrResultNotReady:
		return "El resultado todavía no está disponible."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Demasiadas peticiones. Inténtalo de nuevo más tarde."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Se ha producido un error interno del servidor."
	default:
		return "Se ha producido un error inesperado."
	}
}
