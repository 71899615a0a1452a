package review

// User-facing texts.
const (
	MsgAskProduct      = "Что вы хотите оценить?"
	MsgPrivateOnly     = "Пожалуйста, используйте бота в личном чате."
	MsgAskRating       = "Дайте оценку от 0 до 5."
	MsgNotANumber      = "Введите число от 0 до 5."
	MsgAskReview       = "Поделитесь впечатлениями о товаре или услуге."
	MsgChooseCategory  = "Пожалуйста выберите категорию вашего отзыва:"
	MsgCancelled       = "Отправка отзыва была отменена."
	MsgNothingToCancel = "Нет активного отзыва."
	MsgStaleChoice     = "Этот выбор уже неактуален."
	MsgUnknownCommand  = "Неизвестная команда. Используйте /start или /cancel."
	MsgIdleHint        = "Чтобы оставить отзыв, отправьте /start."
	MsgPublished       = "Спасибо! Ваш отзыв опубликован в канале."
	MsgPublishFailed   = "Извините, произошла ошибка при публикации вашего отзыва."
	MsgRateLimited     = "Слишком часто. Подождите немного."
	MsgAdminOnly       = "Команда доступна только администратору."
)
