package types

// PaginationRequest 分页请求参数
type PaginationRequest struct {
	Page     int `form:"page" binding:"omitempty,min=1"`             // 页码（从1开始）
	PageSize int `form:"pageSize" binding:"omitempty,min=1,max=200"` // 每页数量（最大200）
}

// DefaultPagination 返回默认分页参数
func DefaultPagination() *PaginationRequest {
	return &PaginationRequest{
		Page:     1,
		PageSize: 50,
	}
}

// Normalize 补全缺省值
func (p *PaginationRequest) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPagination().PageSize
	}
}

// Offset 计算偏移量
func (p *PaginationRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// PaginationResponse 分页响应
type PaginationResponse struct {
	Data       interface{}    `json:"data"`
	Seq        uint64         `json:"seq"`
	Pagination PaginationMeta `json:"pagination"`
}

// PaginationMeta 分页元数据
type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// Paginate 对已排序的列表切片分页
func Paginate[T any](items []T, req *PaginationRequest) *PaginationResponse {
	req.Normalize()
	total := len(items)

	start := req.Offset()
	if start > total {
		start = total
	}
	end := start + req.PageSize
	if end > total {
		end = total
	}
	page := items[start:end]
	if page == nil {
		page = []T{}
	}

	totalPages := (total + req.PageSize - 1) / req.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return &PaginationResponse{
		Data: page,
		Pagination: PaginationMeta{
			Page:       req.Page,
			PageSize:   req.PageSize,
			TotalItems: int64(total),
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}
}
