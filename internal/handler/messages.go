package handler

import "github.com/iamvkosarev/ai-chat-web/pkg/local"

const textOK = "OK"

var (
	textUnauthorized = local.NewSet(
		"Not authorized",
		local.NewTrans(local.Rus, "Требуется авторизация"),
	)
	textInvalidRequest = local.NewSet(
		"Invalid request body",
		local.NewTrans(local.Rus, "Некорректный запрос"),
	)
	textEmptyMessage = local.NewSet(
		"Message is required",
		local.NewTrans(local.Rus, "Сообщение не может быть пустым"),
	)
	textInvalidConversationID = local.NewSet(
		"Invalid conversation id",
		local.NewTrans(local.Rus, "Некорректный идентификатор диалога"),
	)
	textUserNotFound = local.NewSet(
		"User not registered",
		local.NewTrans(local.Rus, "Пользователь не зарегистрирован"),
	)
	textConversationNotFound = local.NewSet(
		"Conversation not found",
		local.NewTrans(local.Rus, "Диалог не найден"),
	)
	textGenerationFailed = local.NewSet(
		"Failed to get a response from the assistant",
		local.NewTrans(local.Rus, "Не удалось получить ответ ассистента"),
	)
	textMissingCredentials = local.NewSet(
		"Name, email and password are required",
		local.NewTrans(local.Rus, "Укажите имя, почту и пароль"),
	)
	textInvalidCredentials = local.NewSet(
		"Invalid email or password",
		local.NewTrans(local.Rus, "Неверная почта или пароль"),
	)
	textUserAlreadyExists = local.NewSet(
		"User with email %s already exists",
		local.NewTrans(local.Rus, "Пользователь с почтой %s уже существует"),
	)
	textInternal = local.NewSet(
		"Something went wrong",
		local.NewTrans(local.Rus, "Что-то пошло не так"),
	)
)
