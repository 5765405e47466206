package ipfs

// 链下文档结构，按 CID 不可变地存放在固定服务上

// Person 作者或消息参与方
type Person struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Retweet 转发来源
type Retweet struct {
	Author  string `json:"author"`
	Address string `json:"address"`
	CID     string `json:"cid"`
}

// ArticleMetadata 文章元数据，Historic 为作者此前文章的 CID 链
type ArticleMetadata struct {
	Historic  []string `json:"historic"`
	Timestamp int64    `json:"timestamp"`
}

// Article 文章
type Article struct {
	Metadata ArticleMetadata `json:"metadata"`
	Author   Person          `json:"author"`
	Retweet  *Retweet        `json:"retweet,omitempty"`
	Title    string          `json:"title"`
	Content  string          `json:"content"`
}

// CommentMetadata 评论元数据，CID 为所属文章
type CommentMetadata struct {
	Historic  []string `json:"historic"`
	CID       string   `json:"cid"`
	Timestamp int64    `json:"timestamp"`
}

// Comment 评论
type Comment struct {
	Metadata CommentMetadata `json:"metadata"`
	Author   Person          `json:"author"`
	Content  string          `json:"content"`
}

// MessageMetadata 消息元数据，Parent 为会话中上一条消息的 CID
type MessageMetadata struct {
	Parent    string `json:"parent"`
	Timestamp int64  `json:"timestamp"`
}

// Message 私信
type Message struct {
	Metadata MessageMetadata `json:"metadata"`
	From     Person          `json:"from"`
	To       Person          `json:"to"`
	Content  string          `json:"content"`
}
