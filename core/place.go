package core

// Place 是一个旅游景点。Cluster 在启动时由价格聚类赋值一次，之前为 -1。
type Place struct {
	ID       int64
	Name     string
	Category string
	City     string
	Price    float64
	Lat      float64
	Long     float64
	Cluster  int
}

// Rating 是一条用户对景点的评分。同一 (UserID, PlaceID) 可能出现多次。
type Rating struct {
	UserID  int64
	PlaceID int64
	Value   float64
}

// User 是用户的人口统计信息，只用于看板的年龄分布。
type User struct {
	ID       int64
	Location string
	Age      int
}

// Item 元信息的 key
const (
	MetaName     = "name"
	MetaCategory = "category"
	MetaCity     = "city"
	MetaPrice    = "price"
	MetaCluster  = "cluster"
)
