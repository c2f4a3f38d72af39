package backend

import "context"

const newsPath = "/api/news"

type Article struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

func (c *Client) GetNews(ctx context.Context) ([]*Article, error) {
	var articles []*Article
	if err := c.getItems(ctx, newsPath, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}
