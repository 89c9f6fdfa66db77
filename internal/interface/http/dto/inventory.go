package dto

// UpsertItemRequest HTTP入库请求
// 数量的正负由用例校验（返回统一的业务错误码）,这里只校验必填
type UpsertItemRequest struct {
	Name     string `json:"name" binding:"required,max=100" example:"GamePal"`
	Location string `json:"location" binding:"required,max=100" example:"Central Hub"`
	Quantity int    `json:"quantity" example:"12"`
}
