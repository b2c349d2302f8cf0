package sqlinline

const QSelectUserByAuthID = `--sql 7c1e2a40-5b3d-4f0e-9a61-2d8f4c7b1e03
select
    id::text,
    auth_user_id::text,
    coalesce(email, ''),
    coalesce(full_name, ''),
    coalesce(subscription_status, 'free'),
    coalesce(onboarding_completed, false),
    created_at,
    updated_at
from users
where auth_user_id = $1::uuid
limit 1;
`

const QInsertUser = `--sql 3f9a6d21-8e47-4b0c-b5d2-61a0e9c4f7b8
insert into users (auth_user_id, email, full_name, subscription_status, onboarding_completed)
values ($1::uuid, $2, $3, $4, $5)
returning
    id::text,
    auth_user_id::text,
    coalesce(email, ''),
    coalesce(full_name, ''),
    coalesce(subscription_status, 'free'),
    coalesce(onboarding_completed, false),
    created_at,
    updated_at;
`

const QSelectUserTierByID = `--sql 0b6e3d58-2a91-4c7f-8e14-95d7a3f0c6b2
select id::text, coalesce(email, ''), coalesce(subscription_status, 'free')
from users
where id = $1::uuid
limit 1;
`

const QSelectUserTierByEmail = `--sql 5d2c8f17-63ae-4b95-a0d4-1e7b9c3f82a6
select id::text, coalesce(email, ''), coalesce(subscription_status, 'free')
from users
where lower(email) = lower($1)
limit 1;
`

const QUpdateUserTier = `--sql e41a7b90-d5c3-4f62-9b08-7c3e2f15a4d9
update users
set subscription_status = $2,
    onboarding_completed = coalesce($3::boolean, onboarding_completed),
    updated_at = now()
where id = $1::uuid
returning id::text, coalesce(email, ''), coalesce(subscription_status, 'free'), coalesce(onboarding_completed, false);
`
