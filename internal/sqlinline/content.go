package sqlinline

const QListContentByUser = `--sql a4d8b6e2-1c90-4f37-8e5a-0b2c7d9f3e61
select
    id::text,
    record_id,
    coalesce(idea, ''),
    type,
    platform,
    coalesce(status, 'Draft'),
    user_id::text,
    created_at,
    updated_at,
    caption,
    media_urls,
    hashtags,
    blog_url,
    meta_description,
    publish_date::text,
    blog_post
from content
where user_id = $1::uuid
order by created_at desc;
`
